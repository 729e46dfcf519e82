package mapping

import (
	"context"
	"fmt"
	"io"
	"log"
	"sort"
	"strings"

	"github.com/vsinha/fcrecon/pkg/application/dto"
	"github.com/vsinha/fcrecon/pkg/application/services/shared"
	"github.com/vsinha/fcrecon/pkg/domain/entities"
	"github.com/vsinha/fcrecon/pkg/domain/repositories"
	"github.com/vsinha/fcrecon/pkg/domain/services"
	"github.com/vsinha/fcrecon/pkg/infrastructure/events"
)

// MappingService loads the two OEM/project mapping tables and resolves them
// into a lookup. Source files are re-read on every call.
type MappingService struct {
	extracts   repositories.ExtractRepository
	memo       *shared.DatasetMemo
	eventStore events.EventStore
	units      entities.BusinessUnitMap
	resolver   *services.OEMMappingResolver
	logger     *log.Logger
}

// NewMappingService creates a mapping service. memo, eventStore and logger
// may be nil.
func NewMappingService(
	extracts repositories.ExtractRepository,
	memo repositories.MemoRepository,
	eventStore events.EventStore,
	units entities.BusinessUnitMap,
	logger *log.Logger,
) *MappingService {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &MappingService{
		extracts:   extracts,
		memo:       shared.NewDatasetMemo(memo, logger),
		eventStore: eventStore,
		units:      units,
		resolver:   services.NewOEMMappingResolver(units),
		logger:     logger,
	}
}

// Resolve builds the mapping from the primary and detail files. Any failure to
// read or interpret either file is a *entities.MappingLoadError.
func (s *MappingService) Resolve(ctx context.Context, primaryPath, detailPath string) (*dto.MappingResult, error) {
	files := []string{primaryPath, detailPath}
	loadErr := func(err error) error {
		s.logger.Printf("[mapping] %v", err)
		return &entities.MappingLoadError{Files: files, Err: err}
	}

	primaryPrint, err := s.extracts.Fingerprint(primaryPath)
	if err != nil {
		return nil, loadErr(err)
	}
	detailPrint, err := s.extracts.Fingerprint(detailPath)
	if err != nil {
		return nil, loadErr(err)
	}
	key := shared.MemoKey(repositories.DatasetMapping, primaryPrint, detailPrint, s.unitsFingerprint())

	var table entities.MappingTable
	if s.memo.Load(ctx, key, &table) {
		s.announce(files, len(table.Rows))
		return &dto.MappingResult{Files: files, Mapping: &table, Cached: true}, nil
	}

	primary, err := s.extracts.LoadTable(primaryPath)
	if err != nil {
		return nil, loadErr(err)
	}
	detail, err := s.extracts.LoadTable(detailPath)
	if err != nil {
		return nil, loadErr(err)
	}

	resolved, err := s.resolver.Resolve(primary, detail)
	if err != nil {
		return nil, loadErr(err)
	}
	s.memo.Store(ctx, key, repositories.DatasetMapping, resolved)
	s.announce(files, len(resolved.Rows))

	return &dto.MappingResult{Files: files, Mapping: resolved}, nil
}

// BusinessUnit returns the business unit of a plant code, including combined
// codes such as "YMO/YMM"
func (s *MappingService) BusinessUnit(plant string) string {
	return s.units.Resolve(plant)
}

func (s *MappingService) unitsFingerprint() string {
	entries := s.units.Entries()
	plants := make([]string, 0, len(entries))
	for plant := range entries {
		plants = append(plants, plant)
	}
	sort.Strings(plants)

	var b strings.Builder
	for _, plant := range plants {
		fmt.Fprintf(&b, "%s=%s;", plant, entries[plant])
	}
	return b.String()
}

func (s *MappingService) announce(files []string, rows int) {
	s.logger.Printf("[mapping] resolved %d rows from %v", rows, files)
	if s.eventStore == nil {
		return
	}
	event := events.NewEvent(events.MappingResolvedEvent, "mapping", events.MappingResolved{Files: files, Rows: rows})
	if err := s.eventStore.AppendEvent("mapping", event); err != nil {
		s.logger.Printf("[mapping] failed to publish %s: %v", events.MappingResolvedEvent, err)
	}
}
