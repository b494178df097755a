// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package githubapi

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFanOut_IsolatesPerURLFailures(t *testing.T) {
	urls := []string{"owner/good", "owner/bad", "not a url"}

	results := fanOut(context.Background(), urls, 2, func(ctx context.Context, owner, repo string) (string, error) {
		if repo == "bad" {
			return "", fmt.Errorf("boom")
		}
		return owner + "/" + repo, nil
	})

	assert.Equal(t, "owner/good", results["owner/good"].Value)
	assert.Empty(t, results["owner/good"].Err)

	assert.Equal(t, "boom", results["owner/bad"].Err)

	assert.NotEmpty(t, results["not a url"].Err)
}

func TestFanOut_RespectsConcurrencyLimit(t *testing.T) {
	urls := []string{"o/a", "o/b", "o/c", "o/d"}
	var mu sync.Mutex
	var inFlight, maxInFlight int

	results := fanOut(context.Background(), urls, 2, func(ctx context.Context, owner, repo string) (int, error) {
		mu.Lock()
		inFlight++
		if inFlight > maxInFlight {
			maxInFlight = inFlight
		}
		mu.Unlock()

		time.Sleep(10 * time.Millisecond)

		mu.Lock()
		inFlight--
		mu.Unlock()
		return 1, nil
	})

	assert.Len(t, results, 4)
	assert.LessOrEqual(t, maxInFlight, 2)
}
