// Package generation provides the ports the job bodies use to reach external
// AI services (dish images and wine pairings), plus the bounded fixed-delay
// retry wrapper and the failure envelope those calls report through.
package generation
