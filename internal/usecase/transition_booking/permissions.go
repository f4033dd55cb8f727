package transition_booking

import (
	"github.com/m04kA/SMC-CompanionBooking/internal/domain"
)

// allowedRoles роли, которым разрешено действие через API.
// expire и start выполняет только планировщик, cancel идёт через отдельный use case.
var allowedRoles = map[domain.Action][]domain.Role{
	domain.ActionAccept:          {domain.RoleCompanion},
	domain.ActionDecline:         {domain.RoleCompanion},
	domain.ActionComplete:        {domain.RoleHirer, domain.RoleCompanion},
	domain.ActionDispute:         {domain.RoleHirer, domain.RoleCompanion},
	domain.ActionResolveComplete: {domain.RoleAdmin},
	domain.ActionResolveCancel:   {domain.RoleAdmin},
}

// parseAction принимает только действия, доступные через API
func parseAction(raw string) (domain.Action, bool) {
	action, ok := domain.ParseAction(raw)
	if !ok {
		return "", false
	}
	_, exposed := allowedRoles[action]
	return action, exposed
}

// resolveActor выбирает роль, под которой пользователь выполняет действие.
// Участник бронирования действует в своей роли, администратор - как admin.
func resolveActor(b *domain.Booking, action domain.Action, actorID int64, isAdmin bool) (domain.Actor, bool) {
	var candidates []domain.Role
	if role, ok := b.RoleOf(actorID); ok {
		candidates = append(candidates, role)
	}
	if isAdmin {
		candidates = append(candidates, domain.RoleAdmin)
	}

	for _, role := range candidates {
		for _, allowed := range allowedRoles[action] {
			if role == allowed {
				return domain.Actor{ID: actorID, Role: role}, true
			}
		}
	}
	return domain.Actor{}, false
}
