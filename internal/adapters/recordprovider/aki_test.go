package recordprovider_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"reflect"
	"testing"
	"time"

	"github.com/Amund211/gacharecord/internal/adapters/recordprovider"
	"github.com/Amund211/gacharecord/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var expectedHeaders = http.Header{
	// NOTE: go's http.Header automatically camelcases the keys
	"User-Agent":   {"gacharecord/0.1.0 (+https://github.com/Amund211/gacharecord)"},
	"Content-Type": {"application/json"},
}

type mockedHttpClient struct {
	t            *testing.T
	expectedURL  string
	expectedBody string
	response     *http.Response
	statusCode   int
	body         string
	err          error
	calls        int
}

func (m *mockedHttpClient) Do(req *http.Request) (*http.Response, error) {
	m.calls++

	require.Equal(m.t, http.MethodPost, req.Method)
	require.Equal(m.t, m.expectedURL, req.URL.String())
	require.True(m.t, reflect.DeepEqual(expectedHeaders, req.Header), "Expected %v, got %v", expectedHeaders, req.Header)

	body, err := io.ReadAll(req.Body)
	require.NoError(m.t, err)
	require.JSONEq(m.t, m.expectedBody, string(body))

	if m.response != nil {
		return m.response, m.err
	}

	return &http.Response{
		StatusCode: m.statusCode,
		Body:       io.NopCloser(bytes.NewBufferString(m.body)),
	}, m.err
}

type cantRead struct{}

func (c cantRead) Read(p []byte) (n int, err error) {
	return 0, assert.AnError
}

func (c cantRead) Close() error {
	return nil
}

func TestAkiRecordProvider(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, time.July, 5, 7, 40, 58, 0, time.UTC)
	nowFunc := func() time.Time {
		return now
	}

	descriptor := domain.Descriptor{
		PlayerID:    "100000001",
		RecordID:    "4a7cd2c7b2f6d1f2b1e41d1c0ae0c1c1",
		ServerID:    "76402e5b20be2c39f095a152090afddc",
		ResourcesID: "917dfa695d6c6634ee4e972bb9168f6a",
		Language:    "zh-Hans",
		Region:      domain.RegionChina,
	}

	const chinaURL = "https://gmserver-api.aki-game2.com/gacha/record/query"
	const globalURL = "https://gmserver-api.aki-game2.net/gacha/record/query"

	const featuredResonatorBody = `{
		"cardPoolId": "917dfa695d6c6634ee4e972bb9168f6a",
		"cardPoolType": 1,
		"languageCode": "zh-Hans",
		"playerId": "100000001",
		"recordId": "4a7cd2c7b2f6d1f2b1e41d1c0ae0c1c1",
		"serverId": "76402e5b20be2c39f095a152090afddc"
	}`

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		httpClient := &mockedHttpClient{
			t:            t,
			expectedURL:  chinaURL,
			expectedBody: featuredResonatorBody,
			statusCode:   200,
			body: `{"code":0,"message":"success","data":[
				{"cardPoolType":"角色精准调谐","resourceId":1404,"qualityLevel":5,"resourceType":"角色","name":"忌炎","count":1,"time":"2024-07-05 07:41:02"},
				{"cardPoolType":"角色精准调谐","resourceId":21010043,"qualityLevel":3,"resourceType":"武器","name":"远行者长刃·辟路","count":1,"time":"2024-07-05 07:40:58"}
			]}`,
		}
		provider, err := recordprovider.NewAkiRecordProvider(httpClient, nowFunc, time.After)
		require.NoError(t, err)

		records, err := provider.GetRecords(t.Context(), descriptor, domain.CategoryFeaturedResonator)
		require.NoError(t, err)
		require.Equal(t, []domain.PullRecord{
			{
				CardPoolType: "角色精准调谐",
				ResourceID:   1404,
				QualityLevel: 5,
				ResourceType: "角色",
				Name:         "忌炎",
				Count:        1,
				Time:         "2024-07-05 07:41:02",
			},
			{
				CardPoolType: "角色精准调谐",
				ResourceID:   21010043,
				QualityLevel: 3,
				ResourceType: "武器",
				Name:         "远行者长刃·辟路",
				Count:        1,
				Time:         "2024-07-05 07:40:58",
			},
		}, records)
		require.Equal(t, 1, httpClient.calls)
	})

	t.Run("global region and empty data", func(t *testing.T) {
		t.Parallel()

		globalDescriptor := descriptor
		globalDescriptor.Region = domain.RegionGlobal
		globalDescriptor.Language = "en"

		httpClient := &mockedHttpClient{
			t:           t,
			expectedURL: globalURL,
			expectedBody: `{
				"cardPoolId": "917dfa695d6c6634ee4e972bb9168f6a",
				"cardPoolType": 7,
				"languageCode": "en",
				"playerId": "100000001",
				"recordId": "4a7cd2c7b2f6d1f2b1e41d1c0ae0c1c1",
				"serverId": "76402e5b20be2c39f095a152090afddc"
			}`,
			statusCode: 200,
			body:       `{"code":0,"message":"success","data":null}`,
		}
		provider, err := recordprovider.NewAkiRecordProvider(httpClient, nowFunc, time.After)
		require.NoError(t, err)

		records, err := provider.GetRecords(t.Context(), globalDescriptor, domain.CategoryBeginnerSelectorThanksgiving)
		require.NoError(t, err)
		require.Empty(t, records)
		require.NotNil(t, records)
	})

	t.Run("credential rejected", func(t *testing.T) {
		t.Parallel()

		httpClient := &mockedHttpClient{
			t:            t,
			expectedURL:  chinaURL,
			expectedBody: featuredResonatorBody,
			statusCode:   200,
			body:         `{"code":-1,"message":"请求参数错误","data":null}`,
		}
		provider, err := recordprovider.NewAkiRecordProvider(httpClient, nowFunc, time.After)
		require.NoError(t, err)

		_, err = provider.GetRecords(t.Context(), descriptor, domain.CategoryFeaturedResonator)
		require.ErrorIs(t, err, domain.ErrCredentialRejected)
		require.NotErrorIs(t, err, domain.ErrNetworkFailure)
		require.Contains(t, err.Error(), "请求参数错误")
	})

	for _, tc := range []struct {
		name       string
		statusCode int
		body       string
		response   *http.Response
		err        error
	}{
		{name: "transport error", err: assert.AnError},
		{name: "bad status", statusCode: 502, body: `<html>Bad Gateway</html>`},
		{name: "invalid json", statusCode: 200, body: `{"code":0,"data":[`},
		{name: "wrong shape", statusCode: 200, body: `{"code":"zero"}`},
		{
			name: "unreadable body",
			response: &http.Response{
				StatusCode: 200,
				Body:       cantRead{},
			},
		},
	} {
		t.Run("network failure: "+tc.name, func(t *testing.T) {
			t.Parallel()

			httpClient := &mockedHttpClient{
				t:            t,
				expectedURL:  chinaURL,
				expectedBody: featuredResonatorBody,
				statusCode:   tc.statusCode,
				body:         tc.body,
				response:     tc.response,
				err:          tc.err,
			}
			provider, err := recordprovider.NewAkiRecordProvider(httpClient, nowFunc, time.After)
			require.NoError(t, err)

			_, err = provider.GetRecords(t.Context(), descriptor, domain.CategoryFeaturedResonator)
			require.ErrorIs(t, err, domain.ErrNetworkFailure)
			require.NotErrorIs(t, err, domain.ErrCredentialRejected)
		})
	}

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		httpClient := &mockedHttpClient{t: t}
		provider, err := recordprovider.NewAkiRecordProvider(httpClient, nowFunc, time.After)
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		_, err = provider.GetRecords(ctx, descriptor, domain.CategoryFeaturedResonator)
		require.ErrorIs(t, err, context.Canceled)
		require.Equal(t, 0, httpClient.calls)
	})
}
