package workflow

import "canvass/internal/queue"

// ConfigureStages registers the concrete stage handlers the workflow will run.
func (m *Manager) ConfigureStages(set StageSet) {
	foreground := &laneState{kind: laneForeground, name: "foreground", notificationsEnabled: true}
	background := &laneState{kind: laneBackground, name: "background", notificationsEnabled: false}

	if set.Scout != nil {
		foreground.stages = append(foreground.stages, pipelineStage{
			name:             "scout",
			handler:          set.Scout,
			startStatus:      queue.StatusPending,
			processingStatus: queue.StatusScouting,
			doneStatus:       queue.StatusScouted,
		})
	}
	// Scouted items hand off to the background lane for extraction
	curatorStart := queue.StatusScouted
	if set.Extractor != nil {
		background.stages = append(background.stages, pipelineStage{
			name:             "extractor",
			handler:          set.Extractor,
			startStatus:      queue.StatusScouted,
			processingStatus: queue.StatusExtracting,
			doneStatus:       queue.StatusExtracted,
		})
		curatorStart = queue.StatusExtracted
	}
	reporterStart := curatorStart
	if set.Curator != nil {
		background.stages = append(background.stages, pipelineStage{
			name:             "curator",
			handler:          set.Curator,
			startStatus:      curatorStart,
			processingStatus: queue.StatusCompiling,
			doneStatus:       queue.StatusCompiled,
		})
		reporterStart = queue.StatusCompiled
	}
	if set.Reporter != nil {
		background.stages = append(background.stages, pipelineStage{
			name:             "reporter",
			handler:          set.Reporter,
			startStatus:      reporterStart,
			processingStatus: queue.StatusExporting,
			doneStatus:       queue.StatusCompleted,
		})
	}

	lanes := make(map[laneKind]*laneState)
	order := make([]laneKind, 0, 2)

	if len(foreground.stages) > 0 {
		foreground.finalize()
		lanes[foreground.kind] = foreground
		order = append(order, foreground.kind)
	}
	if len(background.stages) > 0 {
		background.finalize()
		lanes[background.kind] = background
		order = append(order, background.kind)
	}

	for _, lane := range lanes {
		if lane == nil {
			continue
		}
		lane.runReclaimer = len(lane.processingStatuses) > 0
	}

	m.mu.Lock()
	m.lanes = lanes
	m.laneOrder = order
	m.mu.Unlock()
}
