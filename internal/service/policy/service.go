package policy

import (
	"context"
	"fmt"

	"github.com/m04kA/SMC-CompanionBooking/internal/domain"
	"github.com/m04kA/SMC-CompanionBooking/internal/service/policy/models"
)

// Service сервис для чтения и изменения политики бронирования
type Service struct {
	provider     Provider
	repo         ConfigRepository
	invalidator  Invalidator
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса политики.
// invalidator может быть nil, если кэш не используется.
func NewService(
	provider Provider,
	repo ConfigRepository,
	invalidator Invalidator,
	timeProvider TimeProvider,
	logger Logger,
) *Service {
	return &Service{
		provider:     provider,
		repo:         repo,
		invalidator:  invalidator,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// Get возвращает действующую политику
// Публичный метод - доступен всем
func (s *Service) Get(ctx context.Context) (*models.PolicyResponse, error) {
	policy, err := s.provider.Policy(ctx)
	if err != nil {
		s.logger.Error("Get: failed to load policy: %v", err)
		return nil, fmt.Errorf("%w: Get - provider error: %w", ErrInternal, err)
	}
	return models.FromDomainPolicy(policy), nil
}

// Update частично обновляет политику
// Доступно только администраторам
func (s *Service) Update(ctx context.Context, req *models.UpdatePolicyRequest) (*models.PolicyResponse, error) {
	s.logger.Info("Update: updating booking policy by user=%d", req.Actor.ID)

	// 1. Проверяем права доступа
	if req.Actor.Role != domain.RoleAdmin {
		s.logger.Warn("Update: user=%d is not an admin", req.Actor.ID)
		return nil, ErrAccessDenied
	}

	// 2. Применяем изменения к копии текущей политики
	current, err := s.provider.Policy(ctx)
	if err != nil {
		s.logger.Error("Update: failed to load policy: %v", err)
		return nil, fmt.Errorf("%w: Update - provider error: %w", ErrInternal, err)
	}

	updated := current
	changed := req.ApplyToPolicy(&updated)
	if len(changed) == 0 {
		return nil, fmt.Errorf("%w: no fields to update", ErrInvalidInput)
	}

	// 3. Валидируем результат целиком: ограничения связывают поля между собой
	if err := updated.Validate(); err != nil {
		s.logger.Warn("Update: validation failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	// 4. Сохраняем только изменённые ключи
	all := updated.Values()
	values := make(map[string]string, len(changed))
	for _, key := range changed {
		values[key] = all[key]
	}

	if err := s.repo.Upsert(ctx, values, req.Actor.ID, s.timeProvider.Now()); err != nil {
		s.logger.Error("Update: repository error: %v", err)
		return nil, fmt.Errorf("%w: Update - repository error: %w", ErrInternal, err)
	}

	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx)
	}

	s.logger.Info("Update: successfully updated keys=%v", changed)
	return models.FromDomainPolicy(updated), nil
}
