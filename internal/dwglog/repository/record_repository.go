package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/kcarlton55/dwglog2/internal/dwglog/entity"
	"gorm.io/gorm"
)

// RecordRepository is the single store behind the drawing log: one table
// of drawing records, keyed internally by dwg_index and externally by the
// unique drawing number.
type RecordRepository struct {
	db *gorm.DB
}

func NewRecordRepository(db *gorm.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

// LastIndex returns the highest assigned sequence index.
func (r *RecordRepository) LastIndex(ctx context.Context) (int64, error) {
	var rec entity.DrawingRecord
	err := r.db.WithContext(ctx).
		Order("dwg_index DESC").
		First(&rec).Error
	if err != nil {
		return 0, err
	}
	return rec.DwgIndex, nil
}

// RecentIndexes returns up to limit sequence indexes from the rows with
// the highest drawing numbers.  This is the context window the number
// generator works from.
func (r *RecordRepository) RecentIndexes(ctx context.Context, limit int) ([]int64, error) {
	var indexes []int64
	err := r.db.WithContext(ctx).
		Model(&entity.DrawingRecord{}).
		Order("dwg DESC").
		Limit(limit).
		Pluck("dwg_index", &indexes).Error
	return indexes, err
}

// FindByNumber looks a record up by its drawing number.
func (r *RecordRepository) FindByNumber(ctx context.Context, dwg string) (*entity.DrawingRecord, error) {
	var rec entity.DrawingRecord
	err := r.db.WithContext(ctx).
		First(&rec, "dwg = ?", dwg).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListRecent returns the newest records first, up to limit rows.
func (r *RecordRepository) ListRecent(ctx context.Context, limit int) ([]entity.DrawingRecord, error) {
	var recs []entity.DrawingRecord
	err := r.db.WithContext(ctx).
		Order("dwg_index DESC").
		Limit(limit).
		Find(&recs).Error
	return recs, err
}

// Create inserts a new record.  A duplicate dwg_index or dwg surfaces as
// a uniqueness error for the caller to retry on.
func (r *RecordRepository) Create(ctx context.Context, rec *entity.DrawingRecord) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

// Search runs a GLOB query across all columns.  Semicolon-separated terms
// intersect, " or "-separated clauses union, newest rows first.  GLOB is
// not portable to postgres, so the sqlite driver is required.
func (r *RecordRepository) Search(ctx context.Context, term string) ([]entity.DrawingRecord, error) {
	if name := r.db.Dialector.Name(); name != "sqlite" {
		return nil, fmt.Errorf("search requires the sqlite driver, store uses %q", name)
	}
	where, args := buildGlobQuery(term)
	if where == "" {
		return []entity.DrawingRecord{}, nil
	}
	var recs []entity.DrawingRecord
	err := r.db.WithContext(ctx).
		Where(where, args...).
		Order("dwg_index DESC").
		Find(&recs).Error
	return recs, err
}

// Apply renders a validator mutation into parameterized statements and
// executes it in one transaction, so renumbering's simultaneous index and
// part-number change lands atomically or not at all.
func (r *RecordRepository) Apply(ctx context.Context, m *entity.Mutation) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var res *gorm.DB
		switch m.Kind {
		case entity.MutationDelete:
			res = tx.Delete(&entity.DrawingRecord{}, "dwg = ?", m.Dwg)
		case entity.MutationUpdate:
			res = tx.Model(&entity.DrawingRecord{}).
				Where("dwg = ?", m.Dwg).
				Updates(columnUpdates(m))
		case entity.MutationUpdateByIndex:
			res = tx.Model(&entity.DrawingRecord{}).
				Where("dwg_index = ?", m.DwgIndex).
				Updates(columnUpdates(m))
		case entity.MutationRenumber:
			updates := columnUpdates(m)
			updates["dwg_index"] = m.NewIndex
			res = tx.Model(&entity.DrawingRecord{}).
				Where("dwg = ?", m.Dwg).
				Updates(updates)
		default:
			return fmt.Errorf("unknown mutation kind %q", m.Kind)
		}
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Another instance got here first; the row is gone.
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func columnUpdates(m *entity.Mutation) map[string]interface{} {
	updates := make(map[string]interface{}, len(m.Set))
	for col, val := range m.Set {
		updates[col.Name()] = val
	}
	return updates
}

// buildGlobQuery parses a search term of the original log's form, e.g.
// "09*; 11/*/2020 or BASEPLATE*", into a WHERE clause plus arguments.
func buildGlobQuery(term string) (string, []interface{}) {
	var clauseSQL []string
	var args []interface{}
	for _, clause := range strings.Split(term, " or ") {
		clause = strings.Trim(clause, "; ")
		var termSQL []string
		for _, t := range strings.Split(clause, ";") {
			t = strings.TrimSpace(t)
			if t == "" {
				continue
			}
			termSQL = append(termSQL,
				"(dwg GLOB ? OR part GLOB ? OR description GLOB ? OR date GLOB ? OR author GLOB ?)")
			args = append(args, t, t, t, t, t)
		}
		if len(termSQL) > 0 {
			clauseSQL = append(clauseSQL, "("+strings.Join(termSQL, " AND ")+")")
		}
	}
	return strings.Join(clauseSQL, " OR "), args
}
