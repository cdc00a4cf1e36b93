package services

import (
	"time"

	"github.com/yeremiapane/pos-app/events"
	"github.com/yeremiapane/pos-app/utils"
)

// TableMonitor periodically pushes the floor status to connected terminals
// so a second screen never shows a stale table as free.
type TableMonitor struct {
	Tables    *TableOrderService
	MaxTables int
	Interval  time.Duration
	StopChan  chan struct{}
}

func NewTableMonitor(tables *TableOrderService, maxTables int) *TableMonitor {
	return &TableMonitor{
		Tables:    tables,
		MaxTables: maxTables,
		Interval:  2 * time.Second,
		StopChan:  make(chan struct{}),
	}
}

func (tm *TableMonitor) Start() {
	go func() {
		ticker := time.NewTicker(tm.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				tm.broadcastStatus()
			case <-tm.StopChan:
				return
			}
		}
	}()
}

func (tm *TableMonitor) Stop() {
	close(tm.StopChan)
}

func (tm *TableMonitor) broadcastStatus() {
	statuses, err := tm.Tables.GetTablesStatus(tm.MaxTables)
	if err != nil {
		utils.ErrorLogger.Printf("Table monitor: error reading tables status: %v", err)
		return
	}
	events.Broadcast(events.EventTablesStatus, statuses)
}
