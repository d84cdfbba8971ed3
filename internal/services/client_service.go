package services

import (
	"context"

	"github.com/justsurfingit/talent-tracker/internal/dtos"
	"github.com/justsurfingit/talent-tracker/internal/formschema"
	"github.com/justsurfingit/talent-tracker/internal/forms"
	"github.com/justsurfingit/talent-tracker/internal/models"
	"github.com/justsurfingit/talent-tracker/internal/tablequery"
	"gorm.io/gorm"
)

type ClientService struct {
	DB   *gorm.DB
	form *formschema.Schema
}

func NewClientService(db *gorm.DB) *ClientService {
	return &ClientService{
		DB:   db,
		form: formschema.Build(forms.Client()),
	}
}

func (s *ClientService) Create(ctx context.Context, owner string, values map[string]any) (*models.Client, error) {
	return createRecord[models.Client](ctx, s.DB, s.form, owner, values, nil)
}

func (s *ClientService) Update(ctx context.Context, owner string, id uint, values map[string]any) (*models.Client, error) {
	return updateRecord[models.Client](ctx, s.DB, s.form, owner, id, values)
}

func (s *ClientService) Get(ctx context.Context, owner string, id uint) (*models.Client, error) {
	return getRecord[models.Client](ctx, s.DB, owner, id)
}

func (s *ClientService) Delete(ctx context.Context, owner string, id uint) error {
	return deleteRecord[models.Client](ctx, s.DB, owner, id)
}

// List pages through the caller's clients, newest first unless asked otherwise.
func (s *ClientService) List(ctx context.Context, owner string, p tablequery.Params) (*tablequery.Page[models.Client], error) {
	if p.SortColumn == "" {
		p.SortColumn, p.SortDirection = "created_at", tablequery.SortDesc
	}
	return listRecords[models.Client](ctx, s.DB, owner, p)
}

// Options lists every client as a combobox entry, sorted by name.
func (s *ClientService) Options(ctx context.Context) ([]dtos.Option, error) {
	var clients []models.Client
	if err := s.DB.WithContext(ctx).Select("id", "name").Order("name ASC").Find(&clients).Error; err != nil {
		return nil, err
	}

	out := make([]dtos.Option, 0, len(clients))
	for _, c := range clients {
		out = append(out, dtos.Option{Label: c.Name, Value: uintString(c.ID)})
	}
	return out, nil
}
