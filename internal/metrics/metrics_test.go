// Segmatch - Customer Segmentation and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/segmatch

package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordStage(t *testing.T) {
	before := testutil.ToFloat64(StageErrors.WithLabelValues("stage_test", ErrorTypeInternal))

	RecordStage("stage_test", 10*time.Millisecond, nil)
	RecordStage("stage_test", 20*time.Millisecond, errors.New("boom"))

	after := testutil.ToFloat64(StageErrors.WithLabelValues("stage_test", ErrorTypeInternal))
	if after-before != 1 {
		t.Errorf("internal errors delta = %v, want 1", after-before)
	}
}

func TestRecordStageError(t *testing.T) {
	before := testutil.ToFloat64(StageErrors.WithLabelValues("etl_test", ErrorTypeMissingKey))
	RecordStageError("etl_test", ErrorTypeMissingKey)
	RecordStageError("etl_test", ErrorTypeMissingKey)
	after := testutil.ToFloat64(StageErrors.WithLabelValues("etl_test", ErrorTypeMissingKey))
	if after-before != 2 {
		t.Errorf("missing_key delta = %v, want 2", after-before)
	}
}

func TestRecordRowsAndInspection(t *testing.T) {
	rowsBefore := testutil.ToFloat64(RowsProcessed.WithLabelValues("rows_test"))
	RecordRows("rows_test", 7)
	if got := testutil.ToFloat64(RowsProcessed.WithLabelValues("rows_test")) - rowsBefore; got != 7 {
		t.Errorf("rows delta = %v, want 7", got)
	}

	inspBefore := testutil.ToFloat64(InspectionTables.WithLabelValues("historico_inspecao"))
	RecordInspection("historico_inspecao")
	if got := testutil.ToFloat64(InspectionTables.WithLabelValues("historico_inspecao")) - inspBefore; got != 1 {
		t.Errorf("inspection delta = %v, want 1", got)
	}
}

func TestRecordCandidate(t *testing.T) {
	RecordCandidate(4, 0.61, "")
	if got := testutil.ToFloat64(ClusterCandidateScore.WithLabelValues("4")); got != 0.61 {
		t.Errorf("score gauge = %v, want 0.61", got)
	}

	before := testutil.ToFloat64(ClusterCandidatesSkipped.WithLabelValues("single_cluster"))
	RecordCandidate(6, 0, "single_cluster")
	if got := testutil.ToFloat64(ClusterCandidatesSkipped.WithLabelValues("single_cluster")) - before; got != 1 {
		t.Errorf("skipped delta = %v, want 1", got)
	}
}

func TestRecordSelectionAndRun(t *testing.T) {
	RecordSelection(5, 120)
	if got := testutil.ToFloat64(SelectedK); got != 5 {
		t.Errorf("SelectedK = %v, want 5", got)
	}
	if got := testutil.ToFloat64(CustomersClustered); got != 120 {
		t.Errorf("CustomersClustered = %v, want 120", got)
	}

	at := time.Unix(1700000000, 0)
	RecordRunSuccess(at)
	if got := testutil.ToFloat64(LastRunSuccess); got != 1700000000 {
		t.Errorf("LastRunSuccess = %v, want 1700000000", got)
	}
}

func TestRecordRecommendations(t *testing.T) {
	before := testutil.ToFloat64(RecommendationsTotal)
	RecordRecommendations(3)
	if got := testutil.ToFloat64(RecommendationsTotal) - before; got != 3 {
		t.Errorf("recommendations delta = %v, want 3", got)
	}
}

func TestRecordDBQuery(t *testing.T) {
	before := testutil.ToFloat64(DBQueryErrors.WithLabelValues("COPY", "db_test"))
	RecordDBQuery("COPY", "db_test", time.Millisecond, nil)
	RecordDBQuery("COPY", "db_test", time.Millisecond, errors.New("io"))
	if got := testutil.ToFloat64(DBQueryErrors.WithLabelValues("COPY", "db_test")) - before; got != 1 {
		t.Errorf("db errors delta = %v, want 1", got)
	}
}

func TestTrackActiveRequest_Concurrent(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			TrackActiveRequest(true)
			TrackActiveRequest(false)
		}()
	}
	wg.Wait()

	if got := testutil.ToFloat64(APIActiveRequests); got != before {
		t.Errorf("APIActiveRequests = %v, want %v", got, before)
	}
}
