// Copyright 2025 NovaPay
// SPDX-License-Identifier: Apache-2.0

package orchestrator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Snapshot(t *testing.T) {
	m := NewMetrics()

	m.RecordTurn(DestBalance, true, 100*time.Millisecond, []string{"get_balance"})
	m.RecordTurn(DestBalance, true, 200*time.Millisecond, nil)
	m.RecordTurn(DestSupport, false, 50*time.Millisecond, nil)

	snap := m.Snapshot()

	assert.Equal(t, int64(3), snap["total_turns"])
	assert.Equal(t, int64(1), snap["failed_turns"])
	assert.InDelta(t, 66.6, snap["success_rate"].(float64), 0.1)

	destinations := snap["destinations"].(map[string]interface{})
	balance := destinations[DestBalance].(map[string]interface{})
	assert.Equal(t, int64(2), balance["turns"])
	assert.Equal(t, int64(0), balance["failures"])
	assert.InDelta(t, 150.0, balance["avg_ms"].(float64), 0.01)

	tools := snap["tools"].(map[string]int64)
	require.Contains(t, tools, "get_balance")
	assert.Equal(t, int64(1), tools["get_balance"])
}
