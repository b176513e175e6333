package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/helios/fss/internal/domain"
)

// DefaultBaseURL is the production Starling API endpoint.
const DefaultBaseURL = "https://api.starlingbank.com/api/v2"

const requestTimeout = 30 * time.Second

// minorUnitsScale converts pence to pounds.
var minorUnitsScale = decimal.NewFromInt(100)

// StarlingSource implements usecase.TransactionSource against the Starling
// Bank feed API. One source per connected account; the personal and business
// accounts each get their own token and instance.
type StarlingSource struct {
	name       string
	accountUID string
	token      string
	baseURL    string
	client     *http.Client

	mu              sync.Mutex
	defaultCategory string
}

// NewStarlingSource creates a source for one Starling account.
func NewStarlingSource(name, accountUID, token, baseURL string) *StarlingSource {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &StarlingSource{
		name:       name,
		accountUID: accountUID,
		token:      token,
		baseURL:    baseURL,
		client:     &http.Client{Timeout: requestTimeout},
	}
}

// Name returns the configured source name.
func (s *StarlingSource) Name() string { return s.name }

// AccountID returns the Starling account UID.
func (s *StarlingSource) AccountID() string { return s.accountUID }

type feedItem struct {
	FeedItemUID      string `json:"feedItemUid"`
	TransactionTime  string `json:"transactionTime"`
	Direction        string `json:"direction"`
	CounterPartyName string `json:"counterPartyName"`
	Reference        string `json:"reference"`
	Source           string `json:"source"`
	Status           string `json:"status"`
	Amount           struct {
		MinorUnits int64 `json:"minorUnits"`
	} `json:"amount"`
}

type feedResponse struct {
	FeedItems []feedItem `json:"feedItems"`
}

type accountsResponse struct {
	Accounts []struct {
		AccountUID      string `json:"accountUid"`
		DefaultCategory string `json:"defaultCategory"`
	} `json:"accounts"`
}

type balanceResponse struct {
	EffectiveBalance struct {
		MinorUnits int64 `json:"minorUnits"`
	} `json:"effectiveBalance"`
	ClearedBalance struct {
		MinorUnits int64 `json:"minorUnits"`
	} `json:"clearedBalance"`
}

// FetchSince retrieves the account's feed items between since and now.
// Amounts arrive in minor units and are converted to pounds here; signing is
// left to the normalizer, which reads the direction tag.
func (s *StarlingSource) FetchSince(ctx context.Context, since time.Time) ([]domain.RawRecord, error) {
	category, err := s.resolveDefaultCategory(ctx)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/feed/account/%s/category/%s/transactions-between",
		s.baseURL, s.accountUID, category)

	params := url.Values{}
	params.Set("minTransactionTimestamp", since.UTC().Format(time.RFC3339))
	params.Set("maxTransactionTimestamp", time.Now().UTC().Format(time.RFC3339))

	var resp feedResponse
	if err := s.get(ctx, endpoint+"?"+params.Encode(), &resp); err != nil {
		return nil, err
	}

	records := make([]domain.RawRecord, 0, len(resp.FeedItems))
	for _, item := range resp.FeedItems {
		// Declined payments never settle and never move money.
		if item.Status == "DECLINED" {
			continue
		}

		records = append(records, domain.RawRecord{
			AccountID:    s.accountUID,
			SourceUID:    item.FeedItemUID,
			OccurredAt:   item.TransactionTime,
			Amount:       decimal.NewFromInt(item.Amount.MinorUnits).Div(minorUnitsScale).String(),
			Direction:    item.Direction,
			Counterparty: item.CounterPartyName,
			Reference:    item.Reference,
			Source:       item.Source,
			Status:       item.Status,
		})
	}

	return records, nil
}

// FetchBalance retrieves the account's effective balance, falling back to the
// cleared balance when the effective figure is absent.
func (s *StarlingSource) FetchBalance(ctx context.Context) (decimal.Decimal, error) {
	endpoint := fmt.Sprintf("%s/accounts/%s/balance", s.baseURL, s.accountUID)

	var resp balanceResponse
	if err := s.get(ctx, endpoint, &resp); err != nil {
		return decimal.Zero, err
	}

	minor := resp.EffectiveBalance.MinorUnits
	if minor == 0 {
		minor = resp.ClearedBalance.MinorUnits
	}

	return decimal.NewFromInt(minor).Div(minorUnitsScale), nil
}

// resolveDefaultCategory looks up the account's primary feed category once
// and caches it for the lifetime of the source.
func (s *StarlingSource) resolveDefaultCategory(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.defaultCategory != "" {
		return s.defaultCategory, nil
	}

	var resp accountsResponse
	if err := s.get(ctx, s.baseURL+"/accounts", &resp); err != nil {
		return "", err
	}

	for _, acc := range resp.Accounts {
		if acc.AccountUID == s.accountUID {
			s.defaultCategory = acc.DefaultCategory
			return s.defaultCategory, nil
		}
	}

	return "", fmt.Errorf("starling: account %s not found in token's account list", s.accountUID)
}

func (s *StarlingSource) get(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return &domain.TransientError{Err: fmt.Errorf("starling: %w", err)}
		}
		return fmt.Errorf("starling: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		statusErr := fmt.Errorf("starling: unexpected status %d from %s", resp.StatusCode, req.URL.Path)
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
			return &domain.TransientError{Err: statusErr}
		}
		return statusErr
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
