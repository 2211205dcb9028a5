// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestInit(t *testing.T) {
	Init("v1.2.3", "local")
	assert.Equal(t, 1.0, testutil.ToFloat64(ApplicationInfo.WithLabelValues("v1.2.3", "local")))
}

func TestResolutionsByOutcome(t *testing.T) {
	before := testutil.ToFloat64(ResolutionsTotal.WithLabelValues(OutcomeHit))
	ResolutionsTotal.WithLabelValues(OutcomeHit).Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(ResolutionsTotal.WithLabelValues(OutcomeHit)))
}
