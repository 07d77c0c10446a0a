package recordprovider

import (
	"context"
	"fmt"
	"time"

	"github.com/Amund211/gacharecord/internal/config"
	"github.com/Amund211/gacharecord/internal/domain"
)

// mockedRecordProvider serves a fixed set of pulls per category for local development
type mockedRecordProvider struct {
	nowFunc func() time.Time
}

func (m *mockedRecordProvider) GetRecords(ctx context.Context, descriptor domain.Descriptor, category domain.Category) ([]domain.PullRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// One pull per hour for the last day, a top rarity every 12 hours, newest first
	day := m.nowFunc().Truncate(24 * time.Hour)
	records := make([]domain.PullRecord, 0, 24)
	for i := range 24 {
		pulledAt := day.Add(-time.Duration(i) * time.Hour)

		quality := 3
		switch {
		case i%12 == 6:
			quality = domain.TopRarity
		case i%5 == 0:
			quality = 4
		}

		records = append(records, domain.PullRecord{
			CardPoolType: category.DisplayName(),
			ResourceID:   21010000 + int(category)*100 + quality,
			QualityLevel: quality,
			ResourceType: "Weapon",
			Name:         fmt.Sprintf("Mock %d-star", quality),
			Count:        1,
			Time:         pulledAt.Format("2006-01-02 15:04:05"),
		})
	}

	return records, nil
}

func NewRecordProviderOrMock(
	conf config.Config,
	httpClient HttpClient,
	nowFunc func() time.Time,
	afterFunc func(time.Duration) <-chan time.Time,
) (RecordProvider, error) {
	if conf.MockRecordService() {
		return &mockedRecordProvider{nowFunc: nowFunc}, nil
	}

	provider, err := NewAkiRecordProvider(httpClient, nowFunc, afterFunc)
	if err != nil {
		return nil, fmt.Errorf("failed to create record provider: %w", err)
	}
	return provider, nil
}
