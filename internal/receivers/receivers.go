package receivers

import (
	"accounts_portal/internal/domain"  // Importing domain models
	"accounts_portal/internal/notify"  // Event publishing
	"accounts_portal/internal/signals" // Model signals
	"accounts_portal/internal/utils"   // Redis helpers
	"context"                          // Context for Redis and Kafka
	"strconv"                          // Event keys
	"time"                             // Event timestamps

	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// UserListCachePattern matches every cached admin user listing
const UserListCachePattern = "admin:users:*"

// UserRegistered is published once per new account
type UserRegistered struct {
	Type     string    `json:"type"`      // Always "user.registered"
	UserID   uint      `json:"user_id"`   // New user id
	Username string    `json:"username"`  // Login name
	Email    string    `json:"email"`     // Email, may be empty
	JoinedAt time.Time `json:"joined_at"` // Registration time
}

// Register connects the application's receivers to db. rdb may be nil to skip cache invalidation.
func Register(db *gorm.DB, rdb *redis.Client, pub notify.Publisher) error {
	conns := []struct {
		kind   signals.Kind
		sender any
		uid    string
		fn     signals.Receiver
	}{
		{signals.PreSave, &domain.Book{}, "before_saving_book", beforeSavingBook},
		{signals.PostSave, &domain.Book{}, "after_saving_book", afterSavingBook},
		{signals.PostSave, &domain.User{}, "user_list_cache", invalidateUserList(rdb)},
		{signals.PostDelete, &domain.User{}, "user_list_cache", invalidateUserList(rdb)},
		{signals.PostSave, &domain.User{}, "announce_user", announceUser(pub)},
	}
	for _, c := range conns {
		if err := signals.Connect(db, c.kind, c.sender, c.uid, c.fn); err != nil {
			return err
		}
	}
	return nil
}

func beforeSavingBook(e signals.Event) error {
	book := e.Instance.(*domain.Book)
	logrus.WithField("title", book.Title).Info("About to save book")
	return nil
}

func afterSavingBook(e signals.Event) error {
	book := e.Instance.(*domain.Book)
	entry := logrus.WithFields(logrus.Fields{
		"book_id": book.ID,    // Book ID
		"title":   book.Title, // Book title
	})
	if e.Created {
		entry.Info("Book created")
	} else {
		entry.Info("Book updated")
	}
	return nil
}

func invalidateUserList(rdb *redis.Client) signals.Receiver {
	return func(e signals.Event) error {
		if rdb == nil {
			return nil
		}
		if err := utils.DeleteCachePattern(context.WithoutCancel(e.Ctx), rdb, UserListCachePattern); err != nil {
			logrus.WithError(err).Warn("Failed to invalidate user list cache")
		}
		return nil
	}
}

func announceUser(pub notify.Publisher) signals.Receiver {
	return func(e signals.Event) error {
		if !e.Created || pub == nil {
			return nil
		}
		user := e.Instance.(*domain.User)
		event := UserRegistered{
			Type:     "user.registered",
			UserID:   user.ID,
			Username: user.Username,
			Email:    user.Email,
			JoinedAt: user.CreatedAt,
		}
		if err := pub.Publish(context.WithoutCancel(e.Ctx), strconv.FormatUint(uint64(user.ID), 10), event); err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": user.ID,     // User ID
				"error":   err.Error(), // Error message
			}).Error("Failed to publish user.registered")
		}
		return nil
	}
}
