// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package voice

import (
	"go.uber.org/zap"

	"github.com/jeranaias/verity-tui/internal/logging"
)

// =============================================================================
// CAPABILITY DETECTION
// =============================================================================

// Detect selects the bridge variant once at startup. The check is a pure
// capability probe, not a user setting: a reachable gateway wins,
// otherwise the in-runtime variant serves synthesis-only.
func Detect(gatewayURL string) Bridge {
	log := logging.Named("voice")
	if probeGateway(gatewayURL) {
		log.Info("speech gateway detected", zap.String("url", gatewayURL))
		return newGatewayBridge(gatewayURL)
	}
	log.Info("no speech gateway, using in-runtime synthesis")
	return newLocalBridge()
}
