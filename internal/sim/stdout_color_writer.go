// ColorStdoutWriter prints human-friendly, colorized telemetry to STDOUT.
package sim

import (
	"fmt"
	"io"
	"os"
	"sync"
	"text/tabwriter"
	"time"

	"droneops-dispatch/internal/telemetry"
)

const (
	colorReset   = "\x1b[0m"
	colorRed     = "\x1b[31m"
	colorGreen   = "\x1b[32m"
	colorYellow  = "\x1b[33m"
	colorBlue    = "\x1b[34m"
	colorMagenta = "\x1b[35m"
	colorCyan    = "\x1b[36m"
	colorGray    = "\x1b[90m"
)

// Overview describes the clock settings printed before the first row.
type Overview struct {
	ClusterID    string
	TickInterval time.Duration
	Params       ClockParams
}

// ColorStdoutWriter prints rows using ANSI colors.
type ColorStdoutWriter struct {
	overview    *Overview
	out         io.Writer
	once        sync.Once
	mu          sync.Mutex
	droneColors map[string]string
	colorIdx    int
}

var dronePalette = []string{colorRed, colorGreen, colorYellow, colorBlue, colorMagenta, colorCyan}

// NewColorStdoutWriter creates a ColorStdoutWriter writing to os.Stdout.
// overview may be nil.
func NewColorStdoutWriter(overview *Overview) *ColorStdoutWriter {
	return &ColorStdoutWriter{
		overview:    overview,
		out:         os.Stdout,
		droneColors: make(map[string]string),
	}
}

func (w *ColorStdoutWriter) droneColor(id string) string {
	if c, ok := w.droneColors[id]; ok {
		return c
	}
	c := dronePalette[w.colorIdx%len(dronePalette)]
	w.droneColors[id] = c
	w.colorIdx++
	return c
}

func (w *ColorStdoutWriter) printOverview() {
	if w.overview == nil {
		return
	}
	fmt.Fprintln(w.out, "Dispatch Clock:")
	tw := tabwriter.NewWriter(w.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Cluster:\t%s\n", w.overview.ClusterID)
	fmt.Fprintf(tw, "Tick Interval:\t%s\n", w.overview.TickInterval)
	fmt.Fprintf(tw, "Progress Step:\t%.2f\n", w.overview.Params.ProgressStep)
	fmt.Fprintf(tw, "Recharge Step:\t%.2f\n", w.overview.Params.RechargeStep)
	fmt.Fprintf(tw, "Auto Complete:\t%t\n", w.overview.Params.AutoComplete)
	tw.Flush()
	fmt.Fprintln(w.out)
}

func healthColor(health string) string {
	switch health {
	case telemetry.HealthDepleted:
		return colorRed
	case telemetry.HealthLowBattery:
		return colorYellow
	}
	return colorGreen
}

// Write outputs a single drone status row in colorized format.
func (w *ColorStdoutWriter) Write(row telemetry.DroneStatusRow) error {
	w.once.Do(w.printOverview)
	w.mu.Lock()
	defer w.mu.Unlock()

	fmt.Fprintf(w.out, "%s[%s]%s ", colorGray, row.Timestamp.Format(time.RFC3339), colorReset)
	fmt.Fprintf(w.out, "%scluster=%s%s ", colorBlue, row.ClusterID, colorReset)
	fmt.Fprintf(w.out, "%sdrone=%s%s ", w.droneColor(row.DroneID), row.DroneID, colorReset)
	fmt.Fprintf(w.out, "%slat=%.5f%s ", colorGreen, row.Lat, colorReset)
	fmt.Fprintf(w.out, "%slon=%.5f%s ", colorYellow, row.Lon, colorReset)
	fmt.Fprintf(w.out, "%sbatt=%.1f%s ", colorCyan, row.Battery, colorReset)
	fmt.Fprintf(w.out, "%sstate=%s%s ", colorMagenta, row.State, colorReset)
	fmt.Fprintf(w.out, "%shealth=%s%s", healthColor(row.Health), row.Health, colorReset)
	if row.FlightID != "" {
		fmt.Fprintf(w.out, " %sflight=%s %.0f%%%s", colorBlue, row.FlightID, row.Progress*100, colorReset)
	}
	fmt.Fprintln(w.out)
	return nil
}

// WriteBatch outputs multiple drone status rows.
func (w *ColorStdoutWriter) WriteBatch(rows []telemetry.DroneStatusRow) error {
	for _, r := range rows {
		_ = w.Write(r)
	}
	return nil
}

// WriteFlightEvent prints a flight lifecycle event.
func (w *ColorStdoutWriter) WriteFlightEvent(e telemetry.FlightEventRow) error {
	w.once.Do(w.printOverview)
	w.mu.Lock()
	defer w.mu.Unlock()
	col := colorCyan
	if e.EventType == telemetry.FlightEventCancelled || e.EventType == telemetry.FlightEventArchived {
		col = colorRed
	}
	fmt.Fprintf(w.out, "%s[%s]%s %sFLIGHT %s%s id=%s drone=%s delivery=%s status=%s",
		colorGray, e.Timestamp.Format(time.RFC3339), colorReset,
		col, e.EventType, colorReset, e.DisplayID, e.DroneID, e.DeliveryID, e.Status)
	if e.Reason != "" {
		fmt.Fprintf(w.out, " reason=%s", e.Reason)
	}
	fmt.Fprintln(w.out)
	return nil
}

// WriteState prints a tick summary.
func (w *ColorStdoutWriter) WriteState(row telemetry.ClockStateRow) error {
	w.once.Do(w.printOverview)
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintf(w.out, "%s[%s]%s %sTICK %d%s in_progress=%d completed=%d recharging=%d pending=%d\n",
		colorGray, row.Timestamp.Format(time.RFC3339), colorReset,
		colorBlue, row.Tick, colorReset, row.InProgressFlights, row.CompletedFlights,
		row.RechargingDrones, row.PendingDeliveries)
	return nil
}
