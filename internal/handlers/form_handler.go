package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/talent-tracker/internal/dtos"
	"github.com/justsurfingit/talent-tracker/internal/formschema"
	"github.com/justsurfingit/talent-tracker/internal/forms"
	"github.com/justsurfingit/talent-tracker/internal/services"
	"golang.org/x/sync/errgroup"
)

// FormHandler serves form descriptors with their option lists filled in.
type FormHandler struct {
	ClientService     *services.ClientService
	ProfileService    *services.ProfileService
	JobPostingService *services.JobPostingService
}

func NewFormHandler(clients *services.ClientService, profiles *services.ProfileService, postings *services.JobPostingService) *FormHandler {
	return &FormHandler{
		ClientService:     clients,
		ProfileService:    profiles,
		JobPostingService: postings,
	}
}

// Get is GET /forms/:name.
func (h *FormHandler) Get(c *gin.Context) {
	name := c.Param("name")
	fields, err := h.fields(c.Request.Context(), name)
	if err != nil {
		respondError(c, err)
		return
	}
	if fields == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown form: " + name})
		return
	}

	ok(c, http.StatusOK, dtos.FormResponse{
		Name:     name,
		Fields:   fields,
		Defaults: formschema.Defaults(fields, nil),
	})
}

func (h *FormHandler) fields(ctx context.Context, name string) ([]formschema.Field, error) {
	switch name {
	case forms.ClientForm:
		return forms.Client(), nil

	case forms.JobPostingForm:
		var clients, assignees []dtos.Option
		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			clients, err = h.ClientService.Options(ctx)
			return err
		})
		g.Go(func() (err error) {
			assignees, err = h.ProfileService.AssignOptions(ctx)
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return forms.JobPosting(clients, assignees), nil

	case forms.CandidateForm:
		postings, err := h.JobPostingService.Options(ctx)
		if err != nil {
			return nil, err
		}
		return forms.Candidate(postings), nil
	}
	return nil, nil
}
