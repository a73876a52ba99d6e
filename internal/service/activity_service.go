package service

import (
	"log"
	"time"

	"github.com/mindhaven/internal/db"
)

// ActivityService 把连续天数更新与徽章评定串联成一次"有效动作"。
// 徽章评定是尽力而为的后续动作：失败只记日志，绝不影响触发它的用户请求。
type ActivityService struct {
	streaks *StreakService
	badges  *BadgeService
}

// NewActivityService 构造 ActivityService
func NewActivityService(streaks *StreakService, badges *BadgeService) *ActivityService {
	return &ActivityService{streaks: streaks, badges: badges}
}

// Record 在用户完成登录、写日记、心情打卡或访问资源后调用。
// 连续天数先落库，徽章评定基于更新后的状态；评定失败不向上传播。
func (s *ActivityService) Record(userID uint, now time.Time) (*db.Streak, error) {
	streak, err := s.streaks.UpdateStreak(userID, now)
	if err != nil {
		return nil, err
	}

	s.evaluateQuietly(userID, now)

	return streak, nil
}

// evaluateQuietly 执行徽章评定并吞掉错误，只留下日志。
func (s *ActivityService) evaluateQuietly(userID uint, now time.Time) {
	if err := s.badges.EvaluateUserBadges(userID, now); err != nil {
		log.Printf("[BADGE] evaluate user %d failed: %v", userID, err)
	}
}
