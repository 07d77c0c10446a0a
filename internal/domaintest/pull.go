package domaintest

import (
	"fmt"
	"time"

	"github.com/Amund211/gacharecord/internal/domain"
)

const timeLayout = "2006-01-02 15:04:05"

type pullBuilder struct {
	pull *domain.PullRecord
}

func (pb *pullBuilder) WithQuality(qualityLevel int) *pullBuilder {
	pb.pull.QualityLevel = qualityLevel
	return pb
}

func (pb *pullBuilder) WithName(name string) *pullBuilder {
	pb.pull.Name = name
	return pb
}

func (pb *pullBuilder) WithResourceID(resourceID int) *pullBuilder {
	pb.pull.ResourceID = resourceID
	return pb
}

func (pb *pullBuilder) WithResourceType(resourceType string) *pullBuilder {
	pb.pull.ResourceType = resourceType
	return pb
}

func (pb *pullBuilder) WithCardPoolType(cardPoolType string) *pullBuilder {
	pb.pull.CardPoolType = cardPoolType
	return pb
}

func (pb *pullBuilder) Build() domain.PullRecord {
	return *pb.pull
}

func NewPullBuilder(pulledAt time.Time) *pullBuilder {
	pull := &domain.PullRecord{
		CardPoolType: "Featured Resonator Convene",
		ResourceID:   21010043,
		QualityLevel: 3,
		ResourceType: "Weapon",
		Name:         fmt.Sprintf("Pull at %s", pulledAt.Format(timeLayout)),
		Count:        1,
		Time:         pulledAt.Format(timeLayout),
	}
	return &pullBuilder{
		pull: pull,
	}
}

// Pulls creates one pull per quality level, one second apart starting at start.
// The result is in chronological order.
func Pulls(start time.Time, qualityLevels ...int) []domain.PullRecord {
	pulls := make([]domain.PullRecord, 0, len(qualityLevels))
	for i, qualityLevel := range qualityLevels {
		pulls = append(pulls, NewPullBuilder(start.Add(time.Duration(i)*time.Second)).WithQuality(qualityLevel).Build())
	}
	return pulls
}

// NewestFirst returns a reversed copy of the chronological pulls, the order the record service uses
func NewestFirst(pulls []domain.PullRecord) []domain.PullRecord {
	reversed := make([]domain.PullRecord, 0, len(pulls))
	for i := len(pulls) - 1; i >= 0; i-- {
		reversed = append(reversed, pulls[i])
	}
	return reversed
}
