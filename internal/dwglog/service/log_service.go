package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kcarlton55/dwglog2/internal/dwglog/entity"
	"github.com/kcarlton55/dwglog2/internal/dwglog/numbering"
	"github.com/kcarlton55/dwglog2/internal/dwglog/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Notifier announces committed mutations so open table views refresh.
type Notifier interface {
	PublishLogUpdate(action, dwg string)
}

// generationWindow is how many recent indexes the generator consults.
const generationWindow = 50

// createAttempts bounds the retry loop on insert races.  Two instances
// reading the same snapshot can both compute the same next index; the
// loser re-reads and recomputes, at most this many times.
const createAttempts = 3

type CreateRecordInput struct {
	Part        string `json:"part"`
	Description string `json:"description"`
	Author      string `json:"author"`
}

// LogService owns record creation, listing and search.
type LogService struct {
	repo          *repository.RecordRepository
	notifier      Notifier
	logger        *zap.Logger
	defaultAuthor string
	recentLimit   int
}

func NewLogService(repo *repository.RecordRepository, notifier Notifier, logger *zap.Logger, defaultAuthor string, recentLimit int) *LogService {
	if recentLimit <= 0 {
		recentLimit = 100
	}
	if defaultAuthor == "" {
		defaultAuthor = "unknown"
	}
	return &LogService{
		repo:          repo,
		notifier:      notifier,
		logger:        logger,
		defaultAuthor: defaultAuthor,
		recentLimit:   recentLimit,
	}
}

// Create assigns the next drawing number and inserts the record.  Part
// and description are upper-cased and clipped to the column widths, the
// author lower-cased, the date stamped as today.
func (s *LogService) Create(ctx context.Context, input CreateRecordInput) (*entity.DrawingRecord, error) {
	part := clip(strings.ToUpper(strings.TrimSpace(input.Part)), 30)
	description := clip(strings.ToUpper(strings.TrimSpace(input.Description)), 40)
	author := strings.ToLower(strings.TrimSpace(input.Author))
	if author == "" {
		author = s.defaultAuthor
	}
	now := time.Now()
	date := now.Format("01/02/2006")
	year := now.Year()

	var lastErr error
	for attempt := 0; attempt < createAttempts; attempt++ {
		indexes, err := s.repo.RecentIndexes(ctx, generationWindow)
		if err != nil {
			return nil, fmt.Errorf("read recent indexes: %w", err)
		}
		dwg, partOut, newIndex := numbering.GenerateNext(indexes, part, year)
		rec := &entity.DrawingRecord{
			DwgIndex:    newIndex,
			Dwg:         dwg,
			Part:        partOut,
			Description: description,
			Date:        date,
			Author:      author,
		}
		if err := s.repo.Create(ctx, rec); err != nil {
			lastErr = err
			if isUniqueViolation(err) {
				// Another instance claimed the number; recompute.
				s.logger.Warn("drawing number already taken, recomputing",
					zap.String("dwg", dwg), zap.Error(err))
				continue
			}
			return nil, fmt.Errorf("insert record: %w", err)
		}
		if s.notifier != nil {
			s.notifier.PublishLogUpdate("insert", rec.Dwg)
		}
		return rec, nil
	}
	return nil, fmt.Errorf("insert record: %w", lastErr)
}

// ListRecent returns the newest page of the log.
func (s *LogService) ListRecent(ctx context.Context) ([]entity.DrawingRecord, error) {
	return s.repo.ListRecent(ctx, s.recentLimit)
}

// Search runs a GLOB query across all columns.
func (s *LogService) Search(ctx context.Context, term string) ([]entity.DrawingRecord, error) {
	if strings.TrimSpace(term) == "" {
		return []entity.DrawingRecord{}, nil
	}
	return s.repo.Search(ctx, term)
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToUpper(err.Error())
	return strings.Contains(msg, "UNIQUE") || strings.Contains(msg, "DUPLICATE")
}

// clip truncates to max characters, not bytes, so a multi-byte rune is
// never split at the column boundary.
func clip(s string, max int) string {
	r := []rune(s)
	if len(r) > max {
		return string(r[:max])
	}
	return s
}
