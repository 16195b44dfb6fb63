package inventory

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"kitchenstock/internal/common"
	"kitchenstock/internal/metrics"
	"kitchenstock/internal/models"
	"kitchenstock/internal/persistence"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrNoActiveSheet    = errors.New("no active sheet selected")
	ErrSheetNotFound    = errors.New("sheet not found")
	ErrEmptyName        = errors.New("item name is required")
	ErrInvalidQuantity  = errors.New("quantity must be a finite number")
	ErrInvalidDirection = errors.New("unknown correction direction")
	ErrStaleSnapshot    = errors.New("remote snapshot predates a local mutation")
	ErrEngineClosed     = errors.New("inventory engine closed")
)

// UndoReason is the reason recorded on log entries written by Undo.
const UndoReason = "Undo"

// RemoteStore is the backend the engine persists to and loads from.
type RemoteStore interface {
	UpsertItem(ctx context.Context, tenantCode, sheetName string, item models.InventoryItem) persistence.Result
	AppendLog(ctx context.Context, tenantCode string, entry models.UpdateLogEntry) persistence.Result
	SyncSheets(ctx context.Context, tenantCode string, sheets []models.Sheet) persistence.Result
	FetchSnapshot(ctx context.Context, tenantCode string) ([]models.Sheet, error)
}

// Alerter delivers low-stock notifications.
type Alerter interface {
	LowStock(ctx context.Context, alert models.LowStockAlert) error
}

// Mirror keeps a copy of the engine state that survives restarts.
type Mirror interface {
	SaveSnapshot(ctx context.Context, snap models.Snapshot) error
	LoadSnapshot(ctx context.Context, tenantCode string) (*models.Snapshot, error)
}

// ChangePublisher fans item changes out to other processes.
type ChangePublisher interface {
	Publish(ctx context.Context, event models.ChangeEvent) error
}

type Options struct {
	DebounceWait time.Duration
	LogCapacity  int
	UndoDepth    int
	MaxDistance  int
	WriteTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.DebounceWait <= 0 {
		o.DebounceWait = DefaultDebounceWait
	}
	if o.LogCapacity <= 0 {
		o.LogCapacity = DefaultLogCapacity
	}
	if o.UndoDepth <= 0 {
		o.UndoDepth = 1
	}
	if o.MaxDistance < 0 {
		o.MaxDistance = 0
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = 10 * time.Second
	}
	return o
}

// Dependencies are the collaborators shared by every tenant engine. Store is
// required; the rest may be nil.
type Dependencies struct {
	Store     RemoteStore
	Alerter   Alerter
	Mirror    Mirror
	Publisher ChangePublisher
	Metrics   *metrics.Metrics
	Logger    zerolog.Logger
	Origin    string
	Now       func() time.Time
}

// CorrectionRequest is a manual stock movement.
type CorrectionRequest struct {
	Name         string           `json:"name"`
	Quantity     float64          `json:"quantity"`
	Direction    models.Direction `json:"direction"`
	MinThreshold *float64         `json:"min_threshold,omitempty"`
	UnitCost     *float64         `json:"unit_cost,omitempty"`
	Reason       string           `json:"reason,omitempty"`
	// Sheet targets a specific sheet; empty means the active sheet.
	Sheet string `json:"sheet,omitempty"`
	Unit  string `json:"unit,omitempty"`
}

// MutationResult describes the effect of one successful mutation.
type MutationResult struct {
	SheetName string                `json:"sheet_name"`
	Item      models.InventoryItem  `json:"item"`
	Entry     models.UpdateLogEntry `json:"entry"`
	Previous  float64               `json:"previous"`
	Created   bool                  `json:"created"`
	LowStock  bool                  `json:"low_stock"`
}

type change struct {
	sheet        string
	name         string
	quantity     float64
	absolute     bool
	logType      models.LogType
	reason       string
	unit         string
	minThreshold *float64
	unitCost     *float64
	exactOnly    bool
	skipUndo     bool
}

// Engine owns the item store, update log and undo history of one tenant.
// All methods are safe for concurrent use.
type Engine struct {
	tenant   string
	deps     Dependencies
	opts     Options
	resolver Resolver
	logger   zerolog.Logger

	mu      sync.Mutex
	sheets  []models.Sheet
	active  string
	log     *UpdateLog
	undo    *UndoStack
	version uint64
	// synced is the last version handed to the store by a sheet sync.
	synced uint64
	closed bool

	syncer *Debouncer
	writes sync.WaitGroup
}

func NewEngine(tenantCode string, deps Dependencies, opts Options) *Engine {
	opts = opts.withDefaults()
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Origin == "" {
		deps.Origin = uuid.NewString()
	}
	e := &Engine{
		tenant:   tenantCode,
		deps:     deps,
		opts:     opts,
		resolver: NewResolver(opts.MaxDistance),
		logger:   deps.Logger.With().Str("component", "inventory").Str("tenant", tenantCode).Logger(),
		log:      NewUpdateLog(opts.LogCapacity),
		undo:     NewUndoStack(opts.UndoDepth),
	}
	e.syncer = NewDebouncer(opts.DebounceWait, e.syncNow)
	return e
}

func (e *Engine) TenantCode() string {
	return e.tenant
}

// ApplyAdd adds quantity to the resolved item, creating it when unknown.
func (e *Engine) ApplyAdd(ctx context.Context, name string, quantity float64) (*MutationResult, error) {
	return e.apply(ctx, change{name: name, quantity: quantity, logType: models.LogTypeAdd})
}

// ApplySet sets the resolved item to quantity, creating it when unknown.
func (e *Engine) ApplySet(ctx context.Context, name string, quantity float64) (*MutationResult, error) {
	return e.apply(ctx, change{name: name, quantity: quantity, absolute: true, logType: models.LogTypeSet})
}

// ApplyCorrection applies an entrada, saida or correcao movement and
// optionally updates the minimum threshold and unit cost.
func (e *Engine) ApplyCorrection(ctx context.Context, req CorrectionRequest) (*MutationResult, error) {
	c := change{
		sheet:        req.Sheet,
		name:         req.Name,
		unit:         req.Unit,
		reason:       req.Reason,
		minThreshold: req.MinThreshold,
		unitCost:     req.UnitCost,
	}
	switch req.Direction {
	case models.DirectionIn:
		c.quantity = req.Quantity
		c.logType = models.LogTypeAdd
	case models.DirectionOut:
		c.quantity = -math.Abs(req.Quantity)
		c.logType = models.LogTypeSubtract
	case models.DirectionCorrection:
		c.quantity = req.Quantity
		c.absolute = true
		c.logType = models.LogTypeSet
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidDirection, req.Direction)
	}
	return e.apply(ctx, c)
}

// Undo reverts the newest undo entry by setting the item back to its
// previous quantity. The revert is logged as a set with reason "Undo" and is
// not itself undoable.
func (e *Engine) Undo(ctx context.Context) (*MutationResult, error) {
	e.mu.Lock()
	entry, ok := e.undo.Peek()
	if !ok {
		e.mu.Unlock()
		return nil, ErrNothingToUndo
	}
	res, err := e.applyLocked(ctx, change{
		sheet:     entry.SheetName,
		name:      entry.ItemName,
		quantity:  entry.PrevQuantity,
		absolute:  true,
		logType:   models.LogTypeSet,
		reason:    UndoReason,
		exactOnly: true,
		skipUndo:  true,
	})
	if err == nil || errors.Is(err, ErrUndoTargetMissing) {
		e.undo.Pop()
	}
	e.mu.Unlock()
	if err != nil {
		if errors.Is(err, ErrUndoTargetMissing) {
			e.logger.Warn().Str("item", entry.ItemName).Msg("undo target missing, entry dropped")
		}
		return nil, err
	}
	e.afterMutation(ctx, res)
	return res, nil
}

// CanUndo reports whether Undo has an entry to revert.
func (e *Engine) CanUndo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.undo.Armed()
}

func (e *Engine) apply(ctx context.Context, c change) (*MutationResult, error) {
	e.mu.Lock()
	res, err := e.applyLocked(ctx, c)
	e.mu.Unlock()
	if err != nil {
		return nil, err
	}
	e.afterMutation(ctx, res)
	return res, nil
}

func (e *Engine) applyLocked(ctx context.Context, c change) (*MutationResult, error) {
	if e.closed {
		return nil, ErrEngineClosed
	}
	c.name = strings.TrimSpace(c.name)
	if c.name == "" {
		return nil, ErrEmptyName
	}
	if math.IsNaN(c.quantity) || math.IsInf(c.quantity, 0) {
		return nil, ErrInvalidQuantity
	}
	target := e.active
	if c.sheet != "" {
		target = c.sheet
	}
	idx := e.sheetIndexLocked(target)
	if idx < 0 {
		if c.exactOnly {
			return nil, ErrUndoTargetMissing
		}
		if c.sheet != "" {
			return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, c.sheet)
		}
		return nil, ErrNoActiveSheet
	}
	sheet := &e.sheets[idx]

	pos := -1
	if c.exactOnly {
		pos = FindFold(c.name, sheet.Items)
		if pos < 0 {
			return nil, ErrUndoTargetMissing
		}
	} else if m, err := e.resolver.Resolve(c.name, sheet.Items); err == nil {
		pos = m.Index
	}

	created := false
	if pos < 0 {
		unit := c.unit
		if unit == "" {
			unit = models.DefaultUnit
		}
		sheet.Items = append(sheet.Items, models.InventoryItem{
			ID:       newItemID(c.name, sheet.Items),
			Name:     c.name,
			Unit:     unit,
			Category: sheet.Name,
		})
		pos = len(sheet.Items) - 1
		created = true
	}
	item := &sheet.Items[pos]

	prev := item.Quantity
	delta := c.quantity
	if c.absolute {
		item.Quantity = c.quantity
		delta = c.quantity - prev
	} else {
		item.Quantity = prev + c.quantity
	}
	if c.minThreshold != nil {
		v := *c.minThreshold
		item.MinThreshold = &v
	}
	if c.unitCost != nil {
		v := *c.unitCost
		item.UnitCost = &v
	}
	now := e.deps.Now()
	actor := common.ActorFromContext(ctx)
	item.LastUpdated = now
	item.UpdatedBy = actor

	entry := models.UpdateLogEntry{
		ID:          uuid.NewString(),
		ItemName:    item.Name,
		Change:      delta,
		NewQuantity: item.Quantity,
		UpdatedBy:   actor,
		Timestamp:   now,
		Type:        c.logType,
		Reason:      c.reason,
	}
	e.log.Append(entry)
	if !c.skipUndo {
		e.undo.Push(UndoEntry{SheetName: sheet.Name, ItemName: item.Name, PrevQuantity: prev})
	}
	e.version++

	res := &MutationResult{
		SheetName: sheet.Name,
		Item:      *item,
		Entry:     entry,
		Previous:  prev,
		Created:   created,
		LowStock:  item.BelowMinimum(),
	}
	e.writes.Add(1)
	return res, nil
}

func (e *Engine) afterMutation(ctx context.Context, res *MutationResult) {
	e.deps.Metrics.IncMutation(string(res.Entry.Type))
	go e.persist(context.WithoutCancel(ctx), res)
	e.syncer.Trigger()
}

func (e *Engine) persist(parent context.Context, res *MutationResult) {
	defer e.writes.Done()
	ctx, cancel := context.WithTimeout(parent, e.opts.WriteTimeout)
	defer cancel()

	r := e.deps.Store.UpsertItem(ctx, e.tenant, res.SheetName, res.Item)
	e.observe("upsert_item", r)
	if r.IsOK() && e.deps.Publisher != nil {
		op := models.ChangeUpdate
		if res.Created {
			op = models.ChangeInsert
		}
		event := models.ChangeEvent{
			Table:      "items",
			Op:         op,
			TenantCode: e.tenant,
			SheetName:  res.SheetName,
			Item:       res.Item,
			Origin:     e.deps.Origin,
			At:         e.deps.Now(),
		}
		if err := e.deps.Publisher.Publish(ctx, event); err != nil {
			e.logger.Warn().Err(err).Str("item", res.Item.Name).Msg("publish change failed")
		}
	}

	e.observe("append_log", e.deps.Store.AppendLog(ctx, e.tenant, res.Entry))

	if res.LowStock && e.deps.Alerter != nil {
		alert := models.LowStockAlert{
			TenantCode:   e.tenant,
			SheetName:    res.SheetName,
			ItemName:     res.Item.Name,
			Quantity:     res.Item.Quantity,
			MinThreshold: common.SafeFloat64(res.Item.MinThreshold),
			Unit:         res.Item.Unit,
			UpdatedBy:    res.Item.UpdatedBy,
			At:           res.Entry.Timestamp,
		}
		if err := e.deps.Alerter.LowStock(ctx, alert); err != nil {
			e.deps.Metrics.IncAlert("failed")
			e.logger.Warn().Err(err).Str("item", alert.ItemName).Msg("low stock alert failed")
		} else {
			e.deps.Metrics.IncAlert("sent")
		}
	}
}

func (e *Engine) observe(op string, r persistence.Result) {
	e.deps.Metrics.ObservePersistence(op, r.Status.String())
	switch r.Status {
	case persistence.StatusRetryable:
		e.logger.Warn().Err(r.Err).Str("op", op).Msg("remote write failed, retryable")
	case persistence.StatusFatal:
		e.logger.Error().Err(r.Err).Str("op", op).Msg("remote write failed")
	}
}

func (e *Engine) syncNow() {
	e.mu.Lock()
	sheets := models.CloneSheets(e.sheets)
	snap := e.snapshotLocked()
	version := e.version
	e.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), e.opts.WriteTimeout)
	defer cancel()
	e.observe("sync_sheets", e.deps.Store.SyncSheets(ctx, e.tenant, sheets))

	e.mu.Lock()
	if version > e.synced {
		e.synced = version
	}
	e.mu.Unlock()
	if e.deps.Mirror != nil {
		if err := e.deps.Mirror.SaveSnapshot(ctx, snap); err != nil {
			e.logger.Warn().Err(err).Msg("mirror snapshot failed")
		}
	}
}

// Flush runs a pending sheet sync now and waits for in-flight writes.
func (e *Engine) Flush() {
	e.syncer.Flush()
	e.writes.Wait()
}

// Close flushes outstanding work and rejects further mutations.
func (e *Engine) Close() {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
	e.Flush()
	e.syncer.Stop()
}

// Refresh fetches the remote snapshot and merges it into local state.
// While local changes still wait for their sheet sync, or when a mutation
// lands during the fetch, the merge is skipped with ErrStaleSnapshot; the
// next refresh picks the remote state up.
func (e *Engine) Refresh(ctx context.Context) error {
	e.mu.Lock()
	seen := e.version
	unsynced := e.synced != seen
	e.mu.Unlock()
	if unsynced {
		e.deps.Metrics.IncMerge("stale")
		return ErrStaleSnapshot
	}

	remote, err := e.deps.Store.FetchSnapshot(ctx, e.tenant)
	if err != nil {
		e.deps.Metrics.IncMerge("failed")
		return fmt.Errorf("fetch snapshot: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.version != seen {
		e.deps.Metrics.IncMerge("stale")
		return ErrStaleSnapshot
	}
	e.mergeLocked(remote)
	e.deps.Metrics.IncMerge("applied")
	return nil
}

// Merge folds an externally obtained remote snapshot into local state.
func (e *Engine) Merge(remote []models.Sheet) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mergeLocked(remote)
	e.deps.Metrics.IncMerge("applied")
}

// Import folds externally edited sheets into local state with the same
// precedence as a remote snapshot. Items without an id adopt the id of the
// same-named item in the sheet, or get a new one. Returns the number of
// items imported.
func (e *Engine) Import(ctx context.Context, sheets []models.Sheet) (int, error) {
	actor := common.ActorFromContext(ctx)
	now := e.deps.Now()

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return 0, ErrEngineClosed
	}
	incoming := models.CloneSheets(sheets)
	n := 0
	for si := range incoming {
		var existing []models.InventoryItem
		if idx := e.sheetIndexLocked(incoming[si].Name); idx >= 0 {
			existing = e.sheets[idx].Items
		}
		assigned := make([]models.InventoryItem, 0, len(existing)+len(incoming[si].Items))
		assigned = append(assigned, existing...)
		for ii := range incoming[si].Items {
			it := &incoming[si].Items[ii]
			if it.ID == "" {
				if pos := FindFold(it.Name, existing); pos >= 0 {
					it.ID = existing[pos].ID
					if it.MinThreshold == nil {
						it.MinThreshold = existing[pos].MinThreshold
					}
					if it.UnitCost == nil {
						it.UnitCost = existing[pos].UnitCost
					}
				} else {
					it.ID = newItemID(it.Name, assigned)
				}
			}
			if it.Unit == "" {
				it.Unit = models.DefaultUnit
			}
			if it.Category == "" {
				it.Category = incoming[si].Name
			}
			it.LastUpdated = now
			it.UpdatedBy = actor
			assigned = append(assigned, *it)
			n++
		}
	}
	e.mergeLocked(incoming)
	e.version++
	e.mu.Unlock()

	e.deps.Metrics.IncMerge("imported")
	e.syncer.Trigger()
	return n, nil
}

func (e *Engine) mergeLocked(remote []models.Sheet) {
	e.sheets = MergeSheets(remote, e.sheets)
	if e.sheetIndexLocked(e.active) < 0 {
		e.active = ""
		if len(e.sheets) > 0 {
			e.active = e.sheets[0].Name
		}
	}
}

// ApplyRemoteChange folds a change notification from another writer into
// local state. The remote row wins. It does not touch the log or undo history.
func (e *Engine) ApplyRemoteChange(event models.ChangeEvent) {
	if event.Origin == e.deps.Origin || event.TenantCode != e.tenant {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := e.sheetIndexLocked(event.SheetName)
	if idx < 0 {
		if event.Op == models.ChangeDelete {
			return
		}
		e.sheets = append(e.sheets, models.Sheet{Name: event.SheetName})
		idx = len(e.sheets) - 1
		if e.active == "" {
			e.active = event.SheetName
		}
	}
	sheet := &e.sheets[idx]
	key := event.Item.Key()
	pos := -1
	for i := range sheet.Items {
		if sheet.Items[i].Key() == key {
			pos = i
			break
		}
	}

	switch event.Op {
	case models.ChangeDelete:
		if pos >= 0 {
			sheet.Items = append(sheet.Items[:pos], sheet.Items[pos+1:]...)
		}
	default:
		if pos >= 0 {
			sheet.Items[pos] = event.Item
		} else {
			sheet.Items = append(sheet.Items, event.Item)
		}
	}
}

// Restore replaces local state with a mirrored snapshot.
func (e *Engine) Restore(snap models.Snapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sheets = models.CloneSheets(snap.Sheets)
	e.log.Replace(snap.Log)
	e.active = snap.ActiveSheet
	if e.sheetIndexLocked(e.active) < 0 {
		e.active = ""
	}
}

func (e *Engine) snapshotLocked() models.Snapshot {
	return models.Snapshot{
		TenantCode:  e.tenant,
		ActiveSheet: e.active,
		Sheets:      models.CloneSheets(e.sheets),
		Log:         e.log.Entries(),
		SavedAt:     e.deps.Now(),
	}
}

// Sheets returns a copy of all sheets.
func (e *Engine) Sheets() []models.Sheet {
	e.mu.Lock()
	defer e.mu.Unlock()
	return models.CloneSheets(e.sheets)
}

// Log returns the retained update log, oldest first.
func (e *Engine) Log() []models.UpdateLogEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.log.Entries()
}

// RecentLog returns up to n log entries, newest first. n <= 0 returns all.
func (e *Engine) RecentLog(n int) []models.UpdateLogEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.log.Recent(n)
}

func (e *Engine) ActiveSheet() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

// SetActiveSheet selects the sheet mutations apply to.
func (e *Engine) SetActiveSheet(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sheetIndexLocked(name) < 0 {
		return fmt.Errorf("%w: %q", ErrSheetNotFound, name)
	}
	e.active = name
	return nil
}

// AddSheet creates an empty sheet if none with that name exists and selects
// it when nothing is active yet.
func (e *Engine) AddSheet(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	e.mu.Lock()
	if e.sheetIndexLocked(name) < 0 {
		e.sheets = append(e.sheets, models.Sheet{Name: name})
		e.version++
	}
	if e.active == "" {
		e.active = name
	}
	e.mu.Unlock()
	e.syncer.Trigger()
	return nil
}

// Find resolves name against the active sheet without mutating anything.
func (e *Engine) Find(name string) (models.InventoryItem, Match, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	idx := e.sheetIndexLocked(e.active)
	if idx < 0 {
		return models.InventoryItem{}, Match{}, ErrNoActiveSheet
	}
	m, err := e.resolver.Resolve(name, e.sheets[idx].Items)
	if err != nil {
		return models.InventoryItem{}, Match{}, err
	}
	return e.sheets[idx].Items[m.Index], m, nil
}

// FindAnywhere resolves name against every sheet, active sheet first.
func (e *Engine) FindAnywhere(name string) (models.InventoryItem, string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	order := make([]int, 0, len(e.sheets))
	if idx := e.sheetIndexLocked(e.active); idx >= 0 {
		order = append(order, idx)
	}
	for i := range e.sheets {
		if e.sheets[i].Name != e.active {
			order = append(order, i)
		}
	}
	for _, i := range order {
		if m, err := e.resolver.Resolve(name, e.sheets[i].Items); err == nil {
			return e.sheets[i].Items[m.Index], e.sheets[i].Name, nil
		}
	}
	return models.InventoryItem{}, "", ErrNoMatch
}

// LowStock lists items across all sheets that sit under their minimum.
func (e *Engine) LowStock() []models.LowStockAlert {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []models.LowStockAlert
	for _, sheet := range e.sheets {
		for _, item := range sheet.Items {
			if !item.BelowMinimum() {
				continue
			}
			out = append(out, models.LowStockAlert{
				TenantCode:   e.tenant,
				SheetName:    sheet.Name,
				ItemName:     item.Name,
				Quantity:     item.Quantity,
				MinThreshold: *item.MinThreshold,
				Unit:         item.Unit,
				UpdatedBy:    item.UpdatedBy,
				At:           item.LastUpdated,
			})
		}
	}
	return out
}

func (e *Engine) sheetIndexLocked(name string) int {
	if name == "" {
		return -1
	}
	for i := range e.sheets {
		if e.sheets[i].Name == name {
			return i
		}
	}
	return -1
}

// newItemID derives a sheet-unique id from the item name.
func newItemID(name string, existing []models.InventoryItem) string {
	base := Slug(name)
	if base == "" {
		base = "item"
	}
	taken := make(map[string]bool, len(existing))
	for _, it := range existing {
		taken[it.ID] = true
	}
	id := base
	for n := 2; taken[id]; n++ {
		id = fmt.Sprintf("%s-%d", base, n)
	}
	return id
}

// Slug lower-cases name, strips accents and joins words with dashes.
func Slug(name string) string {
	s := stripMarks(fold(strings.TrimSpace(name)))
	var b strings.Builder
	dash := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		default:
			if b.Len() > 0 && !dash {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
