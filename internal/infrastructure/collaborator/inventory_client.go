package collaborator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	appsettlement "github.com/comercia/backend/internal/application/settlement"
	"github.com/comercia/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const restoreStockPath = "/api/v1/variants/%s/restore-stock"

// HTTPInventoryClient talks to the inventory service over HTTP. Return
// processing restores stock through it; every failure is surfaced as a
// collaborator failure so the calling unit of work rolls back.
type HTTPInventoryClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewHTTPInventoryClient creates a new HTTPInventoryClient
func NewHTTPInventoryClient(baseURL string, timeout time.Duration, logger *zap.Logger) *HTTPInventoryClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPInventoryClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

type restoreStockRequest struct {
	Quantity int    `json:"quantity"`
	Reason   string `json:"reason,omitempty"`
}

type restoreStockResponse struct {
	VariantID uuid.UUID `json:"variant_id"`
	NewLevel  int       `json:"new_level"`
}

type inventoryErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RestoreStock adds quantity back to a variant's stock and returns the new
// stock level reported by the inventory service.
func (c *HTTPInventoryClient) RestoreStock(ctx context.Context, variantID uuid.UUID, quantity int, reason string) (int, error) {
	if variantID == uuid.Nil {
		return 0, fmt.Errorf("%w: inventory: variant ID cannot be empty", shared.ErrCollaboratorFailure)
	}
	if quantity <= 0 {
		return 0, fmt.Errorf("%w: inventory: quantity must be positive", shared.ErrCollaboratorFailure)
	}

	body, err := json.Marshal(restoreStockRequest{Quantity: quantity, Reason: reason})
	if err != nil {
		return 0, fmt.Errorf("%w: inventory: encoding request: %v", shared.ErrCollaboratorFailure, err)
	}

	url := c.baseURL + fmt.Sprintf(restoreStockPath, variantID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("%w: inventory: building request: %v", shared.ErrCollaboratorFailure, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Inventory service unreachable",
			zap.String("variant_id", variantID.String()),
			zap.Error(err))
		return 0, fmt.Errorf("%w: inventory: %v", shared.ErrCollaboratorFailure, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, fmt.Errorf("%w: inventory: reading response: %v", shared.ErrCollaboratorFailure, err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr inventoryErrorResponse
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Message != "" {
			return 0, fmt.Errorf("%w: inventory: %s (%s)", shared.ErrCollaboratorFailure, apiErr.Message, apiErr.Code)
		}
		return 0, fmt.Errorf("%w: inventory: unexpected status %d", shared.ErrCollaboratorFailure, resp.StatusCode)
	}

	var result restoreStockResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return 0, fmt.Errorf("%w: inventory: parsing response: %v", shared.ErrCollaboratorFailure, err)
	}

	c.logger.Debug("Stock restored",
		zap.String("variant_id", variantID.String()),
		zap.Int("quantity", quantity),
		zap.Int("new_level", result.NewLevel))

	return result.NewLevel, nil
}

var _ appsettlement.InventoryService = (*HTTPInventoryClient)(nil)
