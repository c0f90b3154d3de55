package data

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-kratos/kratos/v2/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"moviereview/internal/biz"
)

var watchlistSortColumns = map[biz.WatchlistSortField]string{
	biz.SortByDateAdded:        "date_added",
	biz.SortWatchlistCreatedAt: "created_at",
}

type watchlistRepo struct {
	data *Data
	log  *log.Helper
}

// NewWatchlistRepo creates a new watchlist repository
func NewWatchlistRepo(data *Data, logger log.Logger) biz.WatchlistRepo {
	return &watchlistRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

func (r *watchlistRepo) AddEntry(ctx context.Context, entry *biz.WatchlistEntry) error {
	dbEntry := &WatchlistEntry{
		ID:        entry.ID,
		UserID:    entry.UserID,
		MovieID:   entry.MovieID,
		DateAdded: entry.DateAdded,
		CreatedAt: entry.CreatedAt,
		UpdatedAt: entry.UpdatedAt,
	}

	if err := r.data.DB(ctx).Omit(clause.Associations).Create(dbEntry).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return biz.ErrAlreadyInWatchlist
		}
		return fmt.Errorf("failed to add watchlist entry: %w", err)
	}
	return nil
}

func (r *watchlistRepo) GetEntry(ctx context.Context, userID, movieID string) (*biz.WatchlistEntry, error) {
	var dbEntry WatchlistEntry
	err := r.data.DB(ctx).Where("user_id = ? AND movie_id = ?", userID, movieID).Take(&dbEntry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, biz.ErrWatchlistEntryNotFound
		}
		return nil, fmt.Errorf("failed to get watchlist entry: %w", err)
	}
	return watchlistEntryToBiz(&dbEntry), nil
}

func (r *watchlistRepo) DeleteEntry(ctx context.Context, userID, movieID string) error {
	result := r.data.DB(ctx).Where("user_id = ? AND movie_id = ?", userID, movieID).Delete(&WatchlistEntry{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete watchlist entry: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return biz.ErrWatchlistEntryNotFound
	}
	return nil
}

func (r *watchlistRepo) ListEntries(ctx context.Context, userID string, order biz.WatchlistSort, offset, limit int) ([]*biz.WatchlistEntry, int64, error) {
	query := r.data.DB(ctx).Model(&WatchlistEntry{}).Where("user_id = ?", userID).Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count watchlist entries: %w", err)
	}
	if total == 0 || int64(offset) >= total {
		return []*biz.WatchlistEntry{}, total, nil
	}

	column, ok := watchlistSortColumns[order.Field]
	if !ok {
		column = watchlistSortColumns[biz.SortByDateAdded]
	}
	var dbEntries []WatchlistEntry
	err := query.
		Order(clause.OrderBy{Columns: []clause.OrderByColumn{
			{Column: clause.Column{Name: column}, Desc: order.Desc},
			{Column: clause.Column{Name: "id"}, Desc: order.Desc},
		}}).
		Offset(offset).
		Limit(limit).
		Find(&dbEntries).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list watchlist entries: %w", err)
	}

	entries := make([]*biz.WatchlistEntry, 0, len(dbEntries))
	for i := range dbEntries {
		entries = append(entries, watchlistEntryToBiz(&dbEntries[i]))
	}
	return entries, total, nil
}

func watchlistEntryToBiz(m *WatchlistEntry) *biz.WatchlistEntry {
	return &biz.WatchlistEntry{
		ID:        m.ID,
		UserID:    m.UserID,
		MovieID:   m.MovieID,
		DateAdded: m.DateAdded,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
