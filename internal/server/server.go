// Package server exposes the engine over HTTP with an OpenAPI-documented
// JSON API. Errors use a stable envelope: {"error":{"code","message","details"}}.
package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	humachi "github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"

	"postline/internal/domain"
	"postline/internal/engine"
	"postline/internal/planner"
)

// Config for the HTTP API handler.
type Config struct {
	Engine   engine.Engine
	BasePath string
	Auth     AuthConfig
}

type apiErrorBody struct {
	Code    string         `json:"code" example:"invalid_transition"`
	Message string         `json:"message" example:"cannot schedule a published post"`
	Details map[string]any `json:"details,omitempty" jsonschema:"type=object,additionalProperties=true"`
}

// apiError models the error envelope.
type apiError struct {
	status int
	Body   apiErrorBody `json:"error"`
}

func (e *apiError) GetStatus() int { return e.status }
func (e *apiError) Error() string  { return e.Body.Message }

// New returns an HTTP handler exposing the Postline API.
func New(cfg Config) (http.Handler, error) {
	basePath := cfg.BasePath
	if basePath == "" {
		basePath = "/v0"
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	huma.DefaultArrayNullable = false
	huma.NewError = func(status int, msg string, errs ...error) huma.StatusError {
		return newAPIError(status, "", msg, nil)
	}
	huma.NewErrorWithContext = func(_ huma.Context, status int, msg string, errs ...error) huma.StatusError {
		if status == http.StatusUnprocessableEntity && strings.Contains(strings.ToLower(msg), "validation") {
			status = http.StatusBadRequest
		}
		var details map[string]any
		if len(errs) > 0 {
			details = map[string]any{"errors": errs}
		}
		return newAPIError(status, "", msg, details)
	}

	router := chi.NewRouter()
	router.Use(newAuthMiddleware(basePath, cfg.Auth))
	hcfg := huma.DefaultConfig("Postline API", "0.1.0")
	hcfg.OpenAPIPath = "/openapi"
	api := humachi.New(router, hcfg)
	group := huma.NewGroup(api, basePath)

	registerHealth(group)
	registerPosts(group, cfg.Engine)
	registerAdvice(group, cfg.Engine)
	registerCalendar(group, cfg.Engine)
	registerSettings(group, cfg.Engine)

	return router, nil
}

func newAPIError(status int, code, message string, details map[string]any) huma.StatusError {
	if code == "" {
		code = defaultCodeForStatus(status)
	}
	return &apiError{
		status: status,
		Body: apiErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

// handleError maps domain error kinds onto HTTP statuses.
func handleError(err error) huma.StatusError {
	if err == nil {
		return nil
	}
	var se huma.StatusError
	if errors.As(err, &se) {
		return se
	}
	kind := domain.KindOf(err)
	status := http.StatusInternalServerError
	switch kind {
	case domain.KindNotFound:
		status = http.StatusNotFound
	case domain.KindInvalidTransition:
		status = http.StatusConflict
	case domain.KindInvalidSchedule:
		status = http.StatusUnprocessableEntity
	case domain.KindInvalidPlan, domain.KindInvalidInput:
		status = http.StatusBadRequest
	case domain.KindLockTimeout:
		status = http.StatusServiceUnavailable
	case domain.KindTransportFailure:
		status = http.StatusBadGateway
	case domain.KindNotAuthenticated:
		status = http.StatusUnauthorized
	case domain.KindStorageCorrupted:
		status = http.StatusInternalServerError
	}
	code := string(kind)
	if code == "" {
		code = defaultCodeForStatus(status)
	}
	return newAPIError(status, code, err.Error(), nil)
}

func defaultCodeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	case http.StatusUnprocessableEntity:
		return "validation_failed"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusInternalServerError:
		return "internal_error"
	default:
		return strings.ToLower(strings.ReplaceAll(http.StatusText(status), " ", "_"))
	}
}

func registerHealth(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body map[string]string `json:"body"`
	}, error) {
		return &struct {
			Body map[string]string `json:"body"`
		}{Body: map[string]string{"status": "ok"}}, nil
	})
}

func registerPosts(api huma.API, e engine.Engine) {
	type postPath struct {
		PostID string `path:"post_id"`
	}

	huma.Register(api, huma.Operation{
		OperationID:   "draft-post",
		Method:        http.MethodPost,
		Path:          "/posts",
		Summary:       "Draft a post",
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *struct {
		Body struct {
			Topic string `json:"topic" minLength:"1"`
			Tone  string `json:"tone,omitempty"`
			Text  string `json:"text,omitempty" doc:"Custom body; generated from the topic when empty"`
		}
	}) (*struct {
		Body postDTO `json:"body"`
	}, error) {
		p, err := e.DraftPost(ctx, input.Body.Topic, input.Body.Tone, input.Body.Text)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body postDTO `json:"body"`
		}{Body: toPostDTO(p)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-posts",
		Method:      http.MethodGet,
		Path:        "/posts",
		Summary:     "List posts",
	}, func(ctx context.Context, input *struct {
		Status string `query:"status" enum:"draft,scheduled,published," doc:"Filter by status"`
	}) (*struct {
		Body struct {
			Posts []postDTO `json:"posts"`
		}
	}, error) {
		posts, err := e.ListPosts(ctx, input.Status)
		if err != nil {
			return nil, handleError(err)
		}
		out := &struct {
			Body struct {
				Posts []postDTO `json:"posts"`
			}
		}{}
		out.Body.Posts = toPostDTOs(posts)
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-post",
		Method:      http.MethodGet,
		Path:        "/posts/{post_id}",
		Summary:     "Get a post",
	}, func(ctx context.Context, input *postPath) (*struct {
		Body postDTO `json:"body"`
	}, error) {
		p, err := e.GetPost(ctx, input.PostID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body postDTO `json:"body"`
		}{Body: toPostDTO(p)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "score-post",
		Method:      http.MethodGet,
		Path:        "/posts/{post_id}/score",
		Summary:     "Score a post",
	}, func(ctx context.Context, input *postPath) (*struct {
		Body scoreDTO `json:"body"`
	}, error) {
		s, err := e.ScorePost(ctx, input.PostID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body scoreDTO `json:"body"`
		}{Body: toScoreDTO(s)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-post-content",
		Method:      http.MethodPut,
		Path:        "/posts/{post_id}/content",
		Summary:     "Replace draft content",
	}, func(ctx context.Context, input *struct {
		PostID string `path:"post_id"`
		Body   struct {
			Hook         string `json:"hook,omitempty"`
			Text         string `json:"body" minLength:"1"`
			CallToAction string `json:"call_to_action,omitempty"`
		}
	}) (*struct {
		Body struct {
			Post  postDTO  `json:"post"`
			Score scoreDTO `json:"score"`
		}
	}, error) {
		content := domain.Content{
			Hook:         input.Body.Hook,
			Body:         input.Body.Text,
			CallToAction: input.Body.CallToAction,
		}
		p, score, err := e.UpdateContent(ctx, input.PostID, content)
		if err != nil {
			return nil, handleError(err)
		}
		out := &struct {
			Body struct {
				Post  postDTO  `json:"post"`
				Score scoreDTO `json:"score"`
			}
		}{}
		out.Body.Post = toPostDTO(p)
		out.Body.Score = toScoreDTO(score)
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "schedule-post",
		Method:      http.MethodPost,
		Path:        "/posts/{post_id}/schedule",
		Summary:     "Schedule a draft",
	}, func(ctx context.Context, input *struct {
		PostID string `path:"post_id"`
		Body   struct {
			At time.Time `json:"at" doc:"Future publication time, RFC 3339"`
		}
	}) (*struct {
		Body postDTO `json:"body"`
	}, error) {
		p, err := e.SchedulePost(ctx, input.PostID, input.Body.At)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body postDTO `json:"body"`
		}{Body: toPostDTO(p)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "publish-post",
		Method:      http.MethodPost,
		Path:        "/posts/{post_id}/publish",
		Summary:     "Publish a post now",
	}, func(ctx context.Context, input *postPath) (*struct {
		Body postDTO `json:"body"`
	}, error) {
		p, err := e.PublishPost(ctx, input.PostID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body postDTO `json:"body"`
		}{Body: toPostDTO(p)}, nil
	})
}

func registerAdvice(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "suggest-hashtags",
		Method:      http.MethodPost,
		Path:        "/hashtags/suggest",
		Summary:     "Suggest hashtags",
	}, func(ctx context.Context, input *struct {
		Body struct {
			Topic    string `json:"topic,omitempty"`
			Industry string `json:"industry,omitempty"`
			PostID   string `json:"post_id,omitempty" doc:"When set, suggestions are attached to this draft"`
		}
	}) (*struct {
		Body struct {
			Hashtags []hashtagDTO `json:"hashtags"`
		}
	}, error) {
		suggestions, err := e.SuggestHashtags(ctx, input.Body.Topic, input.Body.Industry, input.Body.PostID)
		if err != nil {
			return nil, handleError(err)
		}
		out := &struct {
			Body struct {
				Hashtags []hashtagDTO `json:"hashtags"`
			}
		}{}
		out.Body.Hashtags = toHashtagDTOs(suggestions)
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "optimal-times",
		Method:      http.MethodGet,
		Path:        "/times",
		Summary:     "Recommended posting windows",
	}, func(ctx context.Context, input *struct {
		Timezone string `query:"timezone"`
		Industry string `query:"industry"`
	}) (*struct {
		Body struct {
			Windows []windowDTO `json:"windows"`
		}
	}, error) {
		windows, err := e.OptimalTimes(ctx, input.Timezone, input.Industry)
		if err != nil {
			return nil, handleError(err)
		}
		out := &struct {
			Body struct {
				Windows []windowDTO `json:"windows"`
			}
		}{}
		out.Body.Windows = toWindowDTOs(windows)
		return out, nil
	})
}

func registerCalendar(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "plan-calendar",
		Method:      http.MethodPost,
		Path:        "/calendar",
		Summary:     "Plan a posting calendar",
	}, func(ctx context.Context, input *struct {
		Body struct {
			Topics   []string `json:"topics" minItems:"1"`
			Days     int      `json:"days" minimum:"1"`
			Start    string   `json:"start,omitempty" doc:"Start date YYYY-MM-DD, defaults to today"`
			Industry string   `json:"industry,omitempty"`
			Timezone string   `json:"timezone,omitempty"`
		}
	}) (*struct {
		Body struct {
			Entries []calendarEntryDTO `json:"entries"`
		}
	}, error) {
		req := planner.Request{
			Topics:   input.Body.Topics,
			Days:     input.Body.Days,
			Industry: input.Body.Industry,
			Timezone: input.Body.Timezone,
		}
		if input.Body.Start != "" {
			start, err := time.Parse("2006-01-02", input.Body.Start)
			if err != nil {
				return nil, newAPIError(http.StatusBadRequest, "bad_request", "start must be YYYY-MM-DD", nil)
			}
			req.Start = start
		}
		entries, err := e.PlanCalendar(ctx, req)
		if err != nil {
			return nil, handleError(err)
		}
		out := &struct {
			Body struct {
				Entries []calendarEntryDTO `json:"entries"`
			}
		}{}
		out.Body.Entries = toCalendarDTOs(entries)
		return out, nil
	})
}

func registerSettings(api huma.API, e engine.Engine) {
	type settingsBody struct {
		Body engine.Settings `json:"body"`
	}

	huma.Register(api, huma.Operation{
		OperationID: "get-settings",
		Method:      http.MethodGet,
		Path:        "/settings",
		Summary:     "Effective settings",
	}, func(ctx context.Context, _ *struct{}) (*settingsBody, error) {
		s, err := e.GetSettings(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		return &settingsBody{Body: s}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "set-default-tone",
		Method:      http.MethodPut,
		Path:        "/settings/tone",
		Summary:     "Set the default drafting tone",
	}, func(ctx context.Context, input *struct {
		Body struct {
			Tone string `json:"tone" minLength:"1"`
		}
	}) (*settingsBody, error) {
		s, err := e.SetDefaultTone(ctx, input.Body.Tone)
		if err != nil {
			return nil, handleError(err)
		}
		return &settingsBody{Body: s}, nil
	})
}
