package fetch

import (
	"context"

	"github.com/ternarybob/marketbrief/internal/models"
)

// SectorReport retrieves the industry and concept board rankings, sina first,
// eastmoney second. Total failure yields an empty report, never an error; a
// report with a populated industry table but empty concept tables is a valid
// partial success.
func (f *Fetcher) SectorReport(ctx context.Context) *models.SectorReport {
	report, err := f.sectorFrom(ctx, f.sina.IndustryBoards, f.sina.ConceptBoards)
	if err == nil && !report.Empty() {
		f.logger.Info().
			Int("gainers", len(report.TopGainers)).
			Int("concept_gainers", len(report.ConceptGainers)).
			Msg("Sector rankings from sina")
		return report
	}
	f.logger.Warn().Err(err).Msg("Sina sector rankings failed, trying eastmoney")

	report, err = f.sectorFrom(ctx, f.eastmoney.IndustryBoards, f.eastmoney.ConceptBoards)
	if err == nil && !report.Empty() {
		f.logger.Info().
			Int("gainers", len(report.TopGainers)).
			Int("concept_gainers", len(report.ConceptGainers)).
			Msg("Sector rankings from eastmoney")
		return report
	}
	f.logger.Warn().Err(err).Msg("Eastmoney sector rankings failed, sector report unavailable")

	return &models.SectorReport{}
}

type boardsFunc func(ctx context.Context) ([]models.SectorRow, error)

func (f *Fetcher) sectorFrom(ctx context.Context, industry, concept boardsFunc) (*models.SectorReport, error) {
	report := &models.SectorReport{}

	ind, err := industry(ctx)
	if err != nil {
		return nil, err
	}
	report.TopGainers, report.TopLosers = rankSectors(ind, f.topSectors)

	// Concept failure downgrades to a partial report rather than failing the
	// whole source
	con, err := concept(ctx)
	if err != nil {
		f.logger.Warn().Err(err).Msg("Concept boards unavailable")
		return report, nil
	}
	report.ConceptGainers, report.ConceptLosers = rankSectors(con, f.topSectors)

	return report, nil
}
