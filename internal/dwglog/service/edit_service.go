package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/kcarlton55/dwglog2/internal/dwglog/entity"
	"github.com/kcarlton55/dwglog2/internal/dwglog/numbering"
	"github.com/kcarlton55/dwglog2/internal/dwglog/repository"
	"go.uber.org/zap"
)

// DecisionKind classifies the outcome of a single-cell edit.
type DecisionKind string

const (
	DecisionUpdate       DecisionKind = "update"
	DecisionDelete       DecisionKind = "delete"
	DecisionOverwrite    DecisionKind = "overwrite"
	DecisionRestore      DecisionKind = "restore"
	DecisionRenumber     DecisionKind = "renumber"
	DecisionReject       DecisionKind = "reject"
	DecisionRejectSilent DecisionKind = "reject_silent"
)

// Decision is the validator's verdict on a proposed edit.  It never
// mutates storage itself; confirmable outcomes carry the Mutation the
// caller executes after the user affirms.
type Decision struct {
	Kind         DecisionKind     `json:"kind"`
	Title        string           `json:"title,omitempty"`
	Message      string           `json:"message,omitempty"`
	NeedsConfirm bool             `json:"needs_confirm"`
	Mutation     *entity.Mutation `json:"mutation,omitempty"`
}

// Rejected reports whether the edit must not be applied.
func (d *Decision) Rejected() bool {
	return d.Kind == DecisionReject || d.Kind == DecisionRejectSilent
}

// renumberDelta caps how far ahead of the last assigned index a
// renumbered drawing may jump.
const renumberDelta = 50

var deleteKeywords = map[string]bool{
	"delete": true,
	"remove": true,
	"del":    true,
	"rm":     true,
}

// EditService classifies single-cell edits and applies confirmed ones.
type EditService struct {
	repo     *repository.RecordRepository
	catalog  numbering.Catalog
	notifier Notifier
	logger   *zap.Logger
}

func NewEditService(repo *repository.RecordRepository, catalog numbering.Catalog, notifier Notifier, logger *zap.Logger) *EditService {
	if catalog == nil {
		catalog = numbering.DefaultCatalog()
	}
	return &EditService{repo: repo, catalog: catalog, notifier: notifier, logger: logger}
}

// ClassifyEdit decides the fate of a proposed cell edit on the row whose
// current drawing number is dwg.  Columns 0-3 are upper-cased and the
// author column lower-cased before any rule runs.
func (s *EditService) ClassifyEdit(ctx context.Context, dwg string, column entity.Column, value string) (*Decision, error) {
	if !column.Valid() {
		return nil, fmt.Errorf("invalid column %d", int(column))
	}
	rec, err := s.repo.FindByNumber(ctx, dwg)
	if err != nil {
		return nil, fmt.Errorf("load record %q: %w", dwg, err)
	}

	if column == entity.ColumnAuthor {
		value = strings.ToLower(value)
	} else {
		value = strings.ToUpper(value)
	}

	switch column {
	case entity.ColumnDwg:
		return s.classifyNumber(ctx, rec, value)
	case entity.ColumnPart:
		return s.classifyPart(rec, value), nil
	case entity.ColumnDescription:
		return plainUpdate(rec, column, clip(value, 40)), nil
	case entity.ColumnDate:
		return classifyDate(rec, value), nil
	default:
		return plainUpdate(rec, column, value), nil
	}
}

// Apply re-classifies the edit and executes confirmable outcomes in one
// transaction.  Rejections come back with no mutation performed; the
// caller is expected to have shown the confirmation prompt already.
func (s *EditService) Apply(ctx context.Context, dwg string, column entity.Column, value string) (*Decision, error) {
	dec, err := s.ClassifyEdit(ctx, dwg, column, value)
	if err != nil {
		return nil, err
	}
	if dec.Rejected() || dec.Mutation == nil {
		return dec, nil
	}
	if err := s.repo.Apply(ctx, dec.Mutation); err != nil {
		return nil, fmt.Errorf("apply %s mutation: %w", dec.Mutation.Kind, err)
	}
	if s.notifier != nil {
		action := "update"
		if dec.Kind == DecisionDelete {
			action = "delete"
		}
		s.notifier.PublishLogUpdate(action, dwg)
	}
	s.logger.Info("edit applied",
		zap.String("dwg", dwg),
		zap.Int("column", int(column)),
		zap.String("decision", string(dec.Kind)))
	return dec, nil
}

// classifyNumber handles edits to the drawing-number column: delete
// keywords, renumbering, restoring the program-generated number, or an
// arbitrary overwrite.
func (s *EditService) classifyNumber(ctx context.Context, rec *entity.DrawingRecord, value string) (*Decision, error) {
	trimmed := strings.TrimSpace(value)
	switch {
	case deleteKeywords[strings.ToLower(trimmed)]:
		return &Decision{
			Kind:         DecisionDelete,
			Title:        "Delete?",
			Message:      deleteMessage(rec),
			NeedsConfirm: true,
			Mutation:     &entity.Mutation{Kind: entity.MutationDelete, Dwg: rec.Dwg},
		}, nil

	case numbering.AllDigits(trimmed) && strings.HasPrefix(trimmed, "20") && len(trimmed) >= 7:
		lastIndex, err := s.repo.LastIndex(ctx)
		if err != nil {
			return nil, fmt.Errorf("read last index: %w", err)
		}
		proposed := numbering.NumberToIndex(trimmed)
		maxAllowed := lastIndex + renumberDelta
		if proposed > maxAllowed {
			return &Decision{
				Kind:  DecisionReject,
				Title: "Error",
				Message: fmt.Sprintf(
					"The maximum allowable increase for a drawing number is %d.\n%s is the max in this case.",
					renumberDelta, numbering.IndexToNumber(maxAllowed)),
			}, nil
		}
		newDwg := numbering.IndexToNumber(proposed)
		newPart := numbering.SyncPart(rec.Part, rec.DwgIndex, proposed)
		msg := fromTo(rec.Dwg, newDwg)
		if newPart != rec.Part {
			msg += "\n            and,\n" + fromTo(rec.Part, newPart)
		}
		return &Decision{
			Kind:         DecisionRenumber,
			Title:        "Update?",
			Message:      msg,
			NeedsConfirm: true,
			Mutation: &entity.Mutation{
				Kind: entity.MutationRenumber,
				Dwg:  rec.Dwg,
				Set: map[entity.Column]string{
					entity.ColumnDwg:  newDwg,
					entity.ColumnPart: newPart,
				},
				NewIndex: proposed,
			},
		}, nil

	case trimmed == "":
		// Blank restores the program-generated number from the index.
		newDwg := numbering.IndexToNumber(rec.DwgIndex)
		return &Decision{
			Kind:         DecisionRestore,
			Title:        "Update?",
			Message:      fromTo(rec.Dwg, newDwg),
			NeedsConfirm: true,
			Mutation: &entity.Mutation{
				Kind: entity.MutationUpdate,
				Dwg:  rec.Dwg,
				Set:  map[entity.Column]string{entity.ColumnDwg: newDwg},
			},
		}, nil

	default:
		return &Decision{
			Kind:  DecisionOverwrite,
			Title: "Overwrite?",
			Message: "Warning: You are about to overwrite a program-generated drawing\n" +
				"number. If overwritten, to retrieve the original number edit the\n" +
				"drawing number field and leave it blank.  Press Enter and the\n" +
				"original number will reappear.  This is true even if you close\n" +
				"the program and reopen it.",
			NeedsConfirm: true,
			Mutation: &entity.Mutation{
				Kind:     entity.MutationUpdateByIndex,
				DwgIndex: rec.DwgIndex,
				Set:      map[entity.Column]string{entity.ColumnDwg: value},
			},
		}, nil
	}
}

// classifyPart handles part-number edits: synchronization checks,
// autofill of bare prefixes, and catalog-driven description fill.
func (s *EditService) classifyPart(rec *entity.DrawingRecord, value string) *Decision {
	value = clip(value, 30)
	dg := numbering.IndexToNumber(rec.DwgIndex)
	segs := strings.Split(value, "-")
	oldSegs := strings.Split(rec.Part, "-")

	switch {
	case syncShape(segs) && len(dg) >= 7 && segs[1] == dg[:4] && segs[2] == dg[4:]:
		// Already the synchronized form for this drawing; plain update.

	case syncShape(segs) && len(dg) >= 7 && segs[1] == dg[:4] && segs[2] != dg[4:]:
		// The user is trying to steer the drawing number via the part
		// number; that desynchronizes the pair.
		return &Decision{
			Kind:  DecisionReject,
			Title: "Warning!",
			Message: "It looks like you are trying to enter a part no. that this\n" +
				"program would normally generate. Do you expect that the\n" +
				"drawing no. will update to be in sync with this part no.?\n" +
				"(e.g. dwg. no. 2020410 is in sync with pn 0300-2020-410.)\n" +
				"If so, you are taking the wrong approach.\n\n" +
				"Instead change the drawing number.  The part number,\n" +
				"assuming it is currently in sync with the drawing number, will\n" +
				"automatically update to be in sync with the new drawing number.",
		}

	case strings.TrimSpace(value) == "" && syncShape(oldSegs) && len(dg) >= 7:
		// Blank restores a synchronized number with the old prefix.
		value = oldSegs[0] + "-" + dg[:4] + "-" + dg[4:]

	case len(value) == 5 && strings.HasSuffix(value, "-") && len(dg) >= 7:
		// Bare prefix like "0300-": complete it.
		value = value + dg[:4] + "-" + dg[4:]

	case len(value) == 10 && strings.HasSuffix(value, "-") && len(rec.Dwg) >= 7 && value[5:9] == rec.Dwg[:4]:
		// Prefix plus year like "0300-2021-": append the suffix of the
		// number as displayed, which may have been overwritten.
		value = value + rec.Dwg[4:]
	}

	set := map[entity.Column]string{entity.ColumnPart: value}
	if strings.TrimSpace(rec.Description) == "" {
		if d, ok := s.catalog.Describe(value); ok {
			set[entity.ColumnDescription] = d
		}
	}
	return &Decision{
		Kind:         DecisionUpdate,
		Title:        "Update?",
		Message:      fromTo(rec.Part, value),
		NeedsConfirm: true,
		Mutation: &entity.Mutation{
			Kind: entity.MutationUpdate,
			Dwg:  rec.Dwg,
			Set:  set,
		},
	}
}

// classifyDate validates and reformats the date column.  Range checks
// only: day validity against the month is deliberately not enforced, and
// a bad date is dropped without a message, matching the log's historical
// behavior.
func classifyDate(rec *entity.DrawingRecord, value string) *Decision {
	silent := &Decision{Kind: DecisionRejectSilent}
	if strings.Count(value, "/") != 2 {
		return silent
	}
	segs := strings.Split(value, "/")
	for _, seg := range segs {
		if !numbering.AllDigits(seg) {
			return silent
		}
	}
	month, _ := strconv.Atoi(segs[0])
	day, _ := strconv.Atoi(segs[1])
	year, _ := strconv.Atoi(segs[2])
	if month < 1 || month > 12 || day < 1 || day > 31 || year < 1998 || year > 2099 {
		return silent
	}
	formatted := fmt.Sprintf("%02d/%02d/%s", month, day, segs[2])
	return plainUpdate(rec, entity.ColumnDate, formatted)
}

func plainUpdate(rec *entity.DrawingRecord, column entity.Column, value string) *Decision {
	return &Decision{
		Kind:         DecisionUpdate,
		Title:        "Update?",
		Message:      fromTo(rec.Value(column), value),
		NeedsConfirm: true,
		Mutation: &entity.Mutation{
			Kind: entity.MutationUpdate,
			Dwg:  rec.Dwg,
			Set:  map[entity.Column]string{column: value},
		},
	}
}

// deleteMessage enumerates all five fields of the row about to go.
func deleteMessage(rec *entity.DrawingRecord) string {
	return "dwg:      " + rec.Dwg +
		"\nptno:     " + rec.Part +
		"\ndescrip:  " + rec.Description +
		"\ndate:     " + rec.Date +
		"\nauthor:   " + rec.Author
}

func fromTo(from, to string) string {
	return "from: " + from + "\nto:     " + to
}

// syncShape reports whether segs has the prefix-year-suffix shape with
// no empty segment.
func syncShape(segs []string) bool {
	if len(segs) != 3 {
		return false
	}
	for _, seg := range segs {
		if seg == "" {
			return false
		}
	}
	return true
}
