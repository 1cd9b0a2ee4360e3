package db

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/spotless-music/spotless-go/player"
)

// CachedUser returns the cached session, or nil when unauthenticated.
func (r *Repository) CachedUser(ctx context.Context) (*player.AuthenticatedUser, error) {
	var model AuthModel
	err := r.db.WithContext(ctx).Where("key = ?", authKey).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return authToInternal(model), nil
}

// SaveUser upserts the single cached session and notifies watchers.
func (r *Repository) SaveUser(ctx context.Context, user *player.AuthenticatedUser) error {
	if user == nil {
		return errors.New("nil session")
	}

	model := AuthModel{
		Key:                 authKey,
		AccessToken:         user.AccessToken,
		TokenType:           user.TokenType,
		Scope:               user.Scope,
		RefreshToken:        user.RefreshToken,
		ExpirationTimestamp: user.ExpirationTimestamp,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"updated_at",
			"access_token",
			"token_type",
			"scope",
			"refresh_token",
			"expiration_timestamp",
		}),
	}).Create(&model).Error
	if err != nil {
		return err
	}

	copy := *user
	r.notifyWatchers(&copy)
	return nil
}

// DeleteUser drops the cached session and notifies watchers.
func (r *Repository) DeleteUser(ctx context.Context) error {
	err := r.db.WithContext(ctx).
		Unscoped().
		Where("key = ?", authKey).
		Delete(&AuthModel{}).Error
	if err != nil {
		return err
	}

	r.notifyWatchers(nil)
	return nil
}

// WatchAuth emits the current session immediately and again after every
// save or delete, until ctx is cancelled. A nil value means
// unauthenticated.
func (r *Repository) WatchAuth(ctx context.Context) <-chan *player.AuthenticatedUser {
	ch := make(chan *player.AuthenticatedUser, 4)

	current, err := r.CachedUser(ctx)
	if err == nil {
		ch <- current
	} else {
		ch <- nil
	}

	r.watchMu.Lock()
	id := r.nextID
	r.nextID++
	r.watchers[id] = ch
	r.watchMu.Unlock()

	go func() {
		<-ctx.Done()
		r.watchMu.Lock()
		if sub, ok := r.watchers[id]; ok {
			delete(r.watchers, id)
			close(sub)
		}
		r.watchMu.Unlock()
	}()

	return ch
}

func (r *Repository) notifyWatchers(user *player.AuthenticatedUser) {
	r.watchMu.Lock()
	defer r.watchMu.Unlock()
	for _, sub := range r.watchers {
		for {
			select {
			case sub <- user:
			default:
				// Drop the oldest pending value so a slow watcher
				// never blocks a save.
				select {
				case <-sub:
				default:
				}
				continue
			}
			break
		}
	}
}
