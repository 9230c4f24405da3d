package middleware

import (
	"context"
	"strings"
	"time"

	"feedbackbot/internal/domain"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const (
	textError     = "Произошла ошибка. Попробуйте позже."
	textForbidden = "Недостаточно прав"

	checkTimeout = 5 * time.Second
)

// Access is the part of the access service the middleware needs
type Access interface {
	Register(ctx context.Context, u domain.User) error
	IsAdmin(ctx context.Context, userID int64) (bool, error)
}

// Register records every sender before any handler runs
func Register(access Access, logger *zap.Logger) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			sender := c.Sender()
			if sender == nil || sender.IsBot {
				return next(c)
			}

			ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
			defer cancel()

			if err := access.Register(ctx, userFromSender(sender)); err != nil {
				logger.Error("Failed to register user in middleware",
					zap.Int64("user_id", sender.ID),
					zap.Error(err),
				)
				return reply(c, textError)
			}

			return next(c)
		}
	}
}

// AdminOnly stops non-admins with a uniform "insufficient privileges" answer
func AdminOnly(access Access, logger *zap.Logger) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			sender := c.Sender()
			if sender == nil {
				return nil
			}

			ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
			defer cancel()

			admin, err := access.IsAdmin(ctx, sender.ID)
			if err != nil {
				logger.Error("Failed to check admin status in middleware",
					zap.Int64("user_id", sender.ID),
					zap.Error(err),
				)
				return reply(c, textError)
			}
			if !admin {
				logger.Warn("Admin endpoint refused", zap.Int64("user_id", sender.ID))
				return reply(c, textForbidden)
			}

			return next(c)
		}
	}
}

func userFromSender(s *tele.User) domain.User {
	name := strings.TrimSpace(s.FirstName + " " + s.LastName)
	if name == "" {
		name = s.Username
	}
	return domain.User{
		UserID:   s.ID,
		Username: s.Username,
		FullName: name,
	}
}

// reply answers a callback with an alert or a message with text
func reply(c tele.Context, text string) error {
	if c.Callback() != nil {
		return c.Respond(&tele.CallbackResponse{Text: text, ShowAlert: true})
	}
	return c.Send(text)
}
