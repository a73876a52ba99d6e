package db

import "gorm.io/gorm"

const (
	// JournalKindWriting 表示文字日记。
	JournalKindWriting = "writing"
	// JournalKindAudio 表示语音日记。
	JournalKindAudio = "audio"
	// JournalKindArt 表示绘画日记。
	JournalKindArt = "art"
)

// JournalEntry 定义了学生日记模型
// 三种形态共用一张表：writing 使用 Content，audio/art 使用 MediaURL
// Mood 为写日记时的自评心情标签，可为空
type JournalEntry struct {
	gorm.Model
	UserID   uint   `gorm:"index;not null"`
	Kind     string `gorm:"size:20;not null;index"`
	Title    string
	Content  string `gorm:"type:text"`
	MediaURL string
	Mood     string `gorm:"size:30"`
}
