package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Dosada05/prediction-league/models"
	"github.com/Dosada05/prediction-league/repositories"
	"github.com/Dosada05/prediction-league/storage"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

const maxTournamentNameLength = 200

type TournamentService interface {
	ListTournaments(ctx context.Context) ([]models.Tournament, error)
	GetTournament(ctx context.Context, id int) (*models.Tournament, error)
	CreateTournament(ctx context.Context, name string) (*models.Tournament, error)
	UpdateTournament(ctx context.Context, id int, name string) (*models.Tournament, error)
	DeleteTournament(ctx context.Context, id int) error
	UploadEmblem(ctx context.Context, id int, contentType string, reader io.Reader) (*models.Tournament, error)
}

type tournamentService struct {
	tournamentRepo repositories.TournamentRepository
	uploader       storage.FileUploader
	logger         *slog.Logger
}

// NewTournamentService принимает uploader == nil, если хранилище не настроено:
// тогда UploadEmblem возвращает ErrStorageNotConfigured.
func NewTournamentService(tournamentRepo repositories.TournamentRepository, uploader storage.FileUploader, logger *slog.Logger) TournamentService {
	return &tournamentService{
		tournamentRepo: tournamentRepo,
		uploader:       uploader,
		logger:         logger,
	}
}

func normalizeTournamentName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if !validName(name, maxTournamentNameLength) {
		return "", ErrTournamentNameInvalid
	}
	return name, nil
}

func (s *tournamentService) ListTournaments(ctx context.Context) ([]models.Tournament, error) {
	tournaments, err := s.tournamentRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	if tournaments == nil {
		return []models.Tournament{}, nil
	}
	return tournaments, nil
}

func (s *tournamentService) GetTournament(ctx context.Context, id int) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %d: %w", id, err)
	}
	return t, nil
}

func (s *tournamentService) CreateTournament(ctx context.Context, name string) (*models.Tournament, error) {
	name, err := normalizeTournamentName(name)
	if err != nil {
		return nil, err
	}
	t := &models.Tournament{Name: name, Slug: slug.Make(name)}
	if err := s.tournamentRepo.Create(ctx, nil, t); err != nil {
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}
	s.logger.InfoContext(ctx, "tournament created", slog.Int("tournament_id", t.ID), slog.String("slug", t.Slug))
	return t, nil
}

func (s *tournamentService) UpdateTournament(ctx context.Context, id int, name string) (*models.Tournament, error) {
	name, err := normalizeTournamentName(name)
	if err != nil {
		return nil, err
	}
	t, err := s.GetTournament(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Name = name
	t.Slug = slug.Make(name)
	if err := s.tournamentRepo.Update(ctx, t); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to update tournament %d: %w", id, err)
	}
	return t, nil
}

func (s *tournamentService) DeleteTournament(ctx context.Context, id int) error {
	t, err := s.GetTournament(ctx, id)
	if err != nil {
		return err
	}
	if err := s.tournamentRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return fmt.Errorf("failed to delete tournament %d: %w", id, err)
	}
	s.deleteEmblemObject(ctx, id, derefString(t.EmblemKey))
	return nil
}

func (s *tournamentService) UploadEmblem(ctx context.Context, id int, contentType string, reader io.Reader) (*models.Tournament, error) {
	if s.uploader == nil {
		return nil, ErrStorageNotConfigured
	}
	ext, err := GetExtensionFromContentType(contentType)
	if err != nil {
		return nil, err
	}
	t, err := s.GetTournament(ctx, id)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("tournaments/%d/emblem-%s%s", id, uuid.NewString(), ext)
	result, err := s.uploader.Upload(ctx, key, contentType, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to upload emblem for tournament %d: %w", id, err)
	}

	if err := s.tournamentRepo.UpdateEmblem(ctx, id, &result.Key, &result.Location); err != nil {
		// Новая эмблема не привязалась, загруженный объект больше не нужен.
		s.deleteEmblemObject(ctx, id, result.Key)
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to save emblem for tournament %d: %w", id, err)
	}

	s.deleteEmblemObject(ctx, id, derefString(t.EmblemKey))
	t.EmblemKey = &result.Key
	t.EmblemURL = &result.Location
	return t, nil
}

func (s *tournamentService) deleteEmblemObject(ctx context.Context, tournamentID int, key string) {
	if key == "" || s.uploader == nil {
		return
	}
	if err := s.uploader.Delete(ctx, key); err != nil {
		s.logger.WarnContext(ctx, "failed to delete tournament emblem object",
			slog.Int("tournament_id", tournamentID),
			slog.String("key", key),
			slog.Any("error", err),
		)
	}
}
