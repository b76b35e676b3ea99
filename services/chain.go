package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// ChainClient is the host-side collaborator that actually moves value. The
// engine never commits a payout or a funding unless the corresponding chain
// call succeeded.
type ChainClient interface {
	// CurrentHeight reports the chain's block height, used as the ledger's
	// logical clock.
	CurrentHeight(ctx context.Context) (uint64, error)
	// PaySalary transfers amount from the payroll canister to the wallet and
	// returns a transfer reference.
	PaySalary(ctx context.Context, wallet string, amount uint64) (string, error)
	// FundTreasury moves amount into the canister's custody.
	FundTreasury(ctx context.Context, amount uint64) (string, error)
}

type ICPChainClient struct {
	client   *http.Client
	endpoint string
	canister string
}

func NewICPChainClient(endpoint, canisterID string) *ICPChainClient {
	return &ICPChainClient{
		client:   &http.Client{},
		endpoint: endpoint,
		canister: canisterID,
	}
}

func (s *ICPChainClient) CurrentHeight(ctx context.Context) (uint64, error) {
	var result struct {
		Height uint64 `json:"height"`
	}
	if err := s.callCanister(ctx, "block_height", map[string]interface{}{}, &result); err != nil {
		return 0, err
	}
	return result.Height, nil
}

func (s *ICPChainClient) PaySalary(ctx context.Context, wallet string, amount uint64) (string, error) {
	nonce := uuid.NewString()
	args := map[string]interface{}{
		"wallet_address": wallet,
		"amount":         amount,
		"nonce":          nonce,
	}
	if err := s.callCanister(ctx, "pay_salary", args, nil); err != nil {
		return "", err
	}
	return nonce, nil
}

func (s *ICPChainClient) FundTreasury(ctx context.Context, amount uint64) (string, error) {
	nonce := uuid.NewString()
	args := map[string]interface{}{
		"amount": amount,
		"nonce":  nonce,
	}
	if err := s.callCanister(ctx, "fund_treasury", args, nil); err != nil {
		return "", err
	}
	return nonce, nil
}

func (s *ICPChainClient) callCanister(ctx context.Context, method string, args map[string]interface{}, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	url := fmt.Sprintf("%s/api/v2/canister/%s/call", s.endpoint, s.canister)

	payload := map[string]interface{}{
		"method": method,
		"args":   args,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("canister call failed with status: %d", resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode canister response: %w", err)
		}
	}
	return nil
}
