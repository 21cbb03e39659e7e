package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/steevenmondithoka/attendance-deployment/internal/dto"
	"github.com/steevenmondithoka/attendance-deployment/internal/model"
	"github.com/steevenmondithoka/attendance-deployment/internal/repository"
)

// StatsNotifier 统计数据外发接口
// Redis pub/sub 实现见 pkg/redis；测试中以内存实现替代
type StatsNotifier interface {
	PublishStats(ctx context.Context, stats any) error
}

// DashboardService 仪表盘业务接口
type DashboardService interface {
	Stats(ctx context.Context) (*dto.DashboardStats, error)
	// Refresh 重算统计并广播；任何失败只记录日志，绝不向调用方传播
	Refresh(ctx context.Context)
}

type dashboardService struct {
	repo     *repository.Repository
	notifier StatsNotifier
	logger   *zap.Logger
}

// NewDashboardService 创建 DashboardService 实例
// notifier 为 nil 时 Refresh 只重算不广播
func NewDashboardService(repo *repository.Repository, notifier StatsNotifier, logger *zap.Logger) DashboardService {
	return &dashboardService{
		repo:     repo,
		notifier: notifier,
		logger:   logger,
	}
}

func (s *dashboardService) Stats(ctx context.Context) (*dto.DashboardStats, error) {
	totalUsers, err := s.repo.User.Count(ctx)
	if err != nil {
		s.logger.Error("统计用户总数失败", zap.Error(err))
		return nil, err
	}
	totalTeachers, err := s.repo.User.CountByRole(ctx, model.RoleTeacher)
	if err != nil {
		return nil, err
	}
	totalStudents, err := s.repo.Student.Count(ctx)
	if err != nil {
		return nil, err
	}
	totalClasses, err := s.repo.Class.Count(ctx)
	if err != nil {
		return nil, err
	}

	return &dto.DashboardStats{
		TotalUsers:    totalUsers,
		TotalTeachers: totalTeachers,
		TotalStudents: totalStudents,
		TotalClasses:  totalClasses,
	}, nil
}

func (s *dashboardService) Refresh(ctx context.Context) {
	if s.notifier == nil {
		return
	}

	stats, err := s.Stats(ctx)
	if err != nil {
		s.logger.Warn("仪表盘统计重算失败，跳过广播", zap.Error(err))
		return
	}

	if err := s.notifier.PublishStats(ctx, stats); err != nil {
		s.logger.Warn("仪表盘统计广播失败", zap.Error(err))
	}
}
