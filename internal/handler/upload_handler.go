package handler

import (
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/image/draw"
)

const thumbnailMaxWidth = 480

// UploadFile 处理封面图/音频上传：图片额外生成缩略图
func (a *API) UploadFile(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "未找到上传的文件")
		return
	}

	contentType := file.Header.Get("Content-Type")
	isImage := strings.HasPrefix(contentType, "image/")
	isAudio := strings.HasPrefix(contentType, "audio/")
	if !isImage && !isAudio {
		respondError(c, http.StatusBadRequest, "只允许上传图片或音频文件")
		return
	}

	uploadDir := a.uploadDir
	if uploadDir == "" {
		uploadDir = "web/static/uploads"
	}
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		respondError(c, http.StatusInternalServerError, "创建上传目录失败")
		return
	}

	// 生成唯一文件名
	ext := filepath.Ext(file.Filename)
	newFilename := fmt.Sprintf("%s-%s%s", time.Now().Format("20060102"), uuid.New().String(), ext)
	filePath := filepath.Join(uploadDir, newFilename)

	if err := c.SaveUploadedFile(file, filePath); err != nil {
		respondError(c, http.StatusInternalServerError, "保存文件失败")
		return
	}

	urlBase := a.uploadURL
	if urlBase == "" {
		urlBase = "/static/uploads"
	}

	payload := gin.H{
		"url": fmt.Sprintf("%s/%s", strings.TrimRight(urlBase, "/"), newFilename),
	}

	if isImage {
		if thumbName, err := writeThumbnail(filePath, uploadDir, newFilename); err == nil {
			payload["thumbnail_url"] = fmt.Sprintf("%s/%s", strings.TrimRight(urlBase, "/"), thumbName)
		} else {
			// 缩略图失败不影响上传本身
			c.Error(err)
		}
	}

	respondSuccess(c, http.StatusOK, payload)
}

// writeThumbnail 按最大宽度缩放图片并输出 JPEG 缩略图
func writeThumbnail(srcPath, uploadDir, filename string) (string, error) {
	src, err := os.Open(srcPath)
	if err != nil {
		return "", fmt.Errorf("open uploaded image: %w", err)
	}
	defer src.Close()

	decoded, _, err := image.Decode(src)
	if err != nil {
		return "", fmt.Errorf("decode uploaded image: %w", err)
	}

	bounds := decoded.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width <= thumbnailMaxWidth {
		// 原图已经足够小，直接复用
		return filename, nil
	}

	scaledHeight := height * thumbnailMaxWidth / width
	thumb := image.NewRGBA(image.Rect(0, 0, thumbnailMaxWidth, scaledHeight))
	draw.CatmullRom.Scale(thumb, thumb.Bounds(), decoded, bounds, draw.Over, nil)

	thumbName := strings.TrimSuffix(filename, filepath.Ext(filename)) + "_thumb.jpg"
	out, err := os.Create(filepath.Join(uploadDir, thumbName))
	if err != nil {
		return "", fmt.Errorf("create thumbnail: %w", err)
	}
	defer out.Close()

	if err := jpeg.Encode(out, thumb, &jpeg.Options{Quality: 82}); err != nil {
		return "", fmt.Errorf("encode thumbnail: %w", err)
	}

	return thumbName, nil
}
