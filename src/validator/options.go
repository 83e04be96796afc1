package validator

import (
	"github.com/joetechbob/cypher-guard/src/telemetry"
	"github.com/joetechbob/cypher-guard/src/types"
)

// Options configures a single Validate call. TypeChecking is the sole
// configuration surface named by spec §6; Telemetry/TelemetryConfig are
// both optional and nil by default, so Validate stays usable with no
// OpenTelemetry wiring at all.
type Options struct {
	TypeChecking types.TypeCheckLevel

	Telemetry       *telemetry.Instruments
	TelemetryConfig *telemetry.Config
}
