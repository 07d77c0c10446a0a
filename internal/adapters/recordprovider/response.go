package recordprovider

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Amund211/gacharecord/internal/domain"
)

const (
	chinaEndpoint  = "https://gmserver-api.aki-game2.com/gacha/record/query"
	globalEndpoint = "https://gmserver-api.aki-game2.net/gacha/record/query"
)

func endpointForRegion(region domain.Region) string {
	if region == domain.RegionGlobal {
		return globalEndpoint
	}
	return chinaEndpoint
}

type recordRequest struct {
	CardPoolID   string `json:"cardPoolId"`
	CardPoolType int    `json:"cardPoolType"`
	LanguageCode string `json:"languageCode"`
	PlayerID     string `json:"playerId"`
	RecordID     string `json:"recordId"`
	ServerID     string `json:"serverId"`
}

func newRecordRequest(descriptor domain.Descriptor, category domain.Category) recordRequest {
	return recordRequest{
		CardPoolID:   descriptor.ResourcesID,
		CardPoolType: int(category),
		LanguageCode: descriptor.Language,
		PlayerID:     descriptor.PlayerID,
		RecordID:     descriptor.RecordID,
		ServerID:     descriptor.ServerID,
	}
}

type recordResponse struct {
	Code    int                 `json:"code"`
	Message string              `json:"message"`
	Data    []domain.PullRecord `json:"data"`
}

func recordsFromResponse(statusCode int, data []byte) ([]domain.PullRecord, error) {
	if statusCode < http.StatusOK || statusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: record service returned status code %d", domain.ErrNetworkFailure, statusCode)
	}

	var response recordResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, fmt.Errorf("%w: failed to parse record service response: %w", domain.ErrNetworkFailure, err)
	}

	if response.Code != 0 {
		return nil, fmt.Errorf("%w: record service returned code %d (%s)", domain.ErrCredentialRejected, response.Code, response.Message)
	}

	if response.Data == nil {
		return []domain.PullRecord{}, nil
	}

	return response.Data, nil
}
