package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/go-viper/mapstructure/v2"
	"github.com/justsurfingit/talent-tracker/internal/database"
	"github.com/justsurfingit/talent-tracker/internal/formschema"
	"github.com/justsurfingit/talent-tracker/internal/tablequery"
	"gorm.io/gorm"
)

// ownerScope limits a query to rows created by owner. Anonymous callers see
// every row.
func ownerScope(owner string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if owner == "" {
			return db
		}
		return db.Where(tablequery.OwnerColumn+" = ?", owner)
	}
}

// decodeForm copies validated form values onto a model. Form field names are
// the model's json names; IDs sent as strings are converted and nil values
// zero the field.
func decodeForm(values map[string]any, dst any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		ZeroFields:       true,
		Result:           dst,
	})
	if err != nil {
		return err
	}
	return dec.Decode(values)
}

// createRecord validates values against form, stamps the owner and inserts
// the row.
func createRecord[T any](ctx context.Context, db *gorm.DB, form *formschema.Schema, owner string, values map[string]any, prepare func(*T)) (*T, error) {
	cleaned, errs := form.Validate(values)
	if errs != nil {
		return nil, errs
	}
	cleaned[tablequery.OwnerColumn] = owner

	rec := new(T)
	if err := decodeForm(cleaned, rec); err != nil {
		return nil, fmt.Errorf("decoding form: %w", err)
	}
	if prepare != nil {
		prepare(rec)
	}
	if err := db.WithContext(ctx).Create(rec).Error; err != nil {
		return nil, database.TranslateError(err)
	}
	return rec, nil
}

func getRecord[T any](ctx context.Context, db *gorm.DB, owner string, id uint) (*T, error) {
	rec := new(T)
	err := db.WithContext(ctx).Scopes(ownerScope(owner)).First(rec, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// updateRecord applies the fields present in values and re-stamps the owner.
// Fields that are not sent keep their stored value; optional fields sent as
// null are cleared.
func updateRecord[T any](ctx context.Context, db *gorm.DB, form *formschema.Schema, owner string, id uint, values map[string]any) (*T, error) {
	cleaned, errs := form.ValidatePartial(values)
	if errs != nil {
		return nil, errs
	}

	rec, err := getRecord[T](ctx, db, owner, id)
	if err != nil {
		return nil, err
	}

	cleaned[tablequery.OwnerColumn] = owner
	if err := decodeForm(cleaned, rec); err != nil {
		return nil, fmt.Errorf("decoding form: %w", err)
	}

	cols := make([]string, 0, len(cleaned))
	for col := range cleaned {
		cols = append(cols, col)
	}
	sort.Strings(cols)

	if err := db.WithContext(ctx).Model(rec).Select(cols).Updates(rec).Error; err != nil {
		return nil, database.TranslateError(err)
	}
	return rec, nil
}

func deleteRecord[T any](ctx context.Context, db *gorm.DB, owner string, id uint) error {
	res := db.WithContext(ctx).Scopes(ownerScope(owner)).Delete(new(T), id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// listRecords is the table helper scoped to the caller.
func listRecords[T any](ctx context.Context, db *gorm.DB, owner string, p tablequery.Params) (*tablequery.Page[T], error) {
	p.OwnerID = owner
	p.ApplyOwnerFilter = true
	return tablequery.Fetch[T](ctx, db, p)
}

func uintString(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
