// Segmatch - Customer Segmentation and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/segmatch

/*
Package supervisor runs scheduled deployments under suture v4.

	RootSupervisor ("segmatch")
	├── PipelineSupervisor ("pipeline-layer")
	│   └── PipelineService (run on start, then every schedule.interval)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService (if server.enabled)

Supervisor events are logged through sutureslog, bridged to zerolog with
logging.NewSlogLogger:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(logger), supervisor.DefaultTreeConfig())
	tree.AddPipelineService(services.NewPipelineService(p, cfg, logger))
	err = tree.Serve(ctx)

A single run (schedule.interval = 0) does not use the tree.
*/
package supervisor
