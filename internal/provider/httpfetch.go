// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Terravet Contributors

package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	tverr "github.com/terravet/terravet/pkg/errors"
)

// DoJSON issues a GET against rawURL and decodes the JSON body into out,
// translating transport failures and non-200 statuses into coded errors so
// adapters never leak http-level errors to the orchestrator.
func DoJSON(ctx context.Context, client *http.Client, providerID, rawURL string, out any) error {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return tverr.Wrap(err, tverr.CodeProviderUpstreamUnavailable, "building request",
			tverr.FieldProvider(providerID))
	}

	resp, err := client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return tverr.Wrap(err, tverr.CodeProviderFetchTimeout, "upstream call timed out",
				tverr.FieldProvider(providerID))
		}
		return tverr.Wrap(err, tverr.CodeProviderUpstreamUnavailable, "calling upstream",
			tverr.FieldProvider(providerID))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to decode
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return tverr.Errorf(tverr.CodeProviderAuthFailure,
			"%s rejected credentials (status %d)", providerID, resp.StatusCode)
	case resp.StatusCode >= 500:
		return tverr.Errorf(tverr.CodeProviderUpstreamUnavailable,
			"%s unavailable (status %d)", providerID, resp.StatusCode)
	default:
		return tverr.Errorf(tverr.CodeProviderResponseInvalid,
			"%s returned unexpected status %d", providerID, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return tverr.Wrap(err, tverr.CodeProviderResponseInvalid, "decoding upstream response",
			tverr.FieldProvider(providerID))
	}
	return nil
}
