package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/joestump/joe-events/internal/auth"
	"github.com/joestump/joe-events/internal/metrics"
	"github.com/joestump/joe-events/internal/query"
	"github.com/joestump/joe-events/internal/store"
)

// dashboardSchema lists the filter keys organizers can set on /dashboard.
var dashboardSchema = query.Schema{query.KeyCategories, query.KeyStatus}

// DashboardPage is the template data for the organizer's events table.
type DashboardPage struct {
	BasePage
	Events     []EventCard
	Search     string
	Filters    string
	Categories FacetGroup
	Statuses   FacetGroup
	Pager      query.Pager
}

// OrdersPage is the template data for the organizer's orders table.
type OrdersPage struct {
	BasePage
	Orders []*store.OrderLine
	Pager  query.Pager
}

// EventForm holds form input values for creating or editing an event.
type EventForm struct {
	Title       string
	Description string
	Venue       string
	StartsAt    string // datetime-local, UTC
	Price       string // dollars, e.g. "15" or "15.50"
	Capacity    string
	Status      string
	Categories  string // comma separated
}

// EventFormPage is the template data for the new/edit event forms.
type EventFormPage struct {
	BasePage
	Event *store.Event
	Form  EventForm
	Error string
}

// DashboardHandler serves the authenticated organizer pages.
type DashboardHandler struct {
	events     *store.EventStore
	cats       *store.CategoryStore
	orders     *store.OrderStore
	catalog    *store.Catalog
	views      *store.ViewStore
	sessions   *scs.SessionManager
	pagination query.Pagination
	log        *zap.Logger
}

func NewDashboardHandler(es *store.EventStore, cs *store.CategoryStore, os *store.OrderStore, vs *store.ViewStore, sm *scs.SessionManager, p query.Pagination, log *zap.Logger) *DashboardHandler {
	return &DashboardHandler{events: es, cats: cs, orders: os, catalog: store.NewCatalog(es, cs, os), views: vs, sessions: sm, pagination: p, log: log}
}

// page is newDashboardPage plus any flash left by the previous request.
func (h *DashboardHandler) page(r *http.Request, title string) BasePage {
	b := newDashboardPage(r, title)
	if h.sessions == nil {
		return b
	}
	if msg := h.sessions.PopString(r.Context(), auth.SessionFlashKey); msg != "" {
		b.Flash = &Flash{Type: "success", Message: msg}
	}
	return b
}

func (h *DashboardHandler) flash(r *http.Request, msg string) {
	if h.sessions != nil {
		h.sessions.Put(r.Context(), auth.SessionFlashKey, msg)
	}
}

// Show serves GET /dashboard: the organizer's events (all events for admins)
// narrowed by q and the categories and status filters.
func (h *DashboardHandler) Show(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	l := parseListing(r, dashboardSchema, h.pagination, "dashboard", h.log)
	q := l.eventQuery()
	if !user.IsAdmin() {
		q.OrganizerID = user.ID
	}

	cards, total, err := loadCards(r.Context(), h.catalog, q)
	if err != nil {
		h.log.Error("list dashboard events", zap.String("user_id", user.ID), zap.Error(err))
		http.Error(w, "could not load events", http.StatusInternalServerError)
		return
	}
	ids := make([]string, len(cards))
	for i, c := range cards {
		ids[i] = c.ID
	}
	views, err := h.views.CountsFor(r.Context(), ids)
	if err != nil {
		h.log.Warn("count views", zap.Error(err))
	}
	for i := range cards {
		cards[i].Views = views[cards[i].ID]
	}

	all, err := h.cats.ListAll(r.Context())
	if err != nil {
		h.log.Warn("list categories", zap.Error(err))
	}
	catChips := make([]Chip, 0, len(all))
	for _, c := range all {
		catChips = append(catChips, Chip{Label: c.Name, Value: c.Name})
	}

	data := DashboardPage{
		BasePage:   h.page(r, "Your events"),
		Events:     cards,
		Search:     l.Search,
		Categories: l.facet(r.URL.Path, query.KeyCategories, catChips),
		Statuses:   l.facet(r.URL.Path, query.KeyStatus, statusChips()),
		Pager:      query.NewPager(r.URL.Path, l.Params, l.Window, total),
	}
	if len(l.Filters) > 0 {
		data.Filters = l.Filters.Encode()
	}

	if isHTMX(r) {
		renderFragment(w, "events_table", data)
		return
	}
	render(w, "dashboard/events.html", data)
}

// Orders serves GET /dashboard/orders, newest first.
func (h *DashboardHandler) Orders(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	params := r.URL.Query()
	win := query.Resolve(params, h.pagination)

	organizerID := user.ID
	if user.IsAdmin() {
		organizerID = ""
	}
	lines, total, err := h.orders.ListLines(r.Context(), organizerID, win.Offset(), win.Limit)
	if err != nil {
		h.log.Error("list orders", zap.String("user_id", user.ID), zap.Error(err))
		http.Error(w, "could not load orders", http.StatusInternalServerError)
		return
	}

	data := OrdersPage{
		BasePage: newDashboardPage(r, "Orders"),
		Orders:   lines,
		Pager:    query.NewPager(r.URL.Path, params, win, total),
	}
	if isHTMX(r) {
		renderFragment(w, "order_table", data)
		return
	}
	render(w, "dashboard/orders.html", data)
}

// New renders the create-event form.
func (h *DashboardHandler) New(w http.ResponseWriter, r *http.Request) {
	render(w, "dashboard/event_form.html", EventFormPage{
		BasePage: newDashboardPage(r, "New event"),
		Form:     EventForm{Status: store.StatusDraft, Capacity: "100"},
	})
}

// Create processes the create-event form submission.
func (h *DashboardHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	form := eventFormFromRequest(r)

	in, err := form.input()
	if err == nil {
		err = store.ValidateEvent(in)
	}
	if err != nil {
		renderStatus(w, http.StatusUnprocessableEntity, "dashboard/event_form.html", EventFormPage{
			BasePage: newDashboardPage(r, "New event"),
			Form:     form,
			Error:    err.Error(),
		})
		return
	}

	ev, err := h.events.Create(r.Context(), user.ID, in)
	if err != nil {
		h.log.Error("create event", zap.String("user_id", user.ID), zap.Error(err))
		renderStatus(w, http.StatusInternalServerError, "dashboard/event_form.html", EventFormPage{
			BasePage: newDashboardPage(r, "New event"),
			Form:     form,
			Error:    errSaveFailed.Error(),
		})
		return
	}
	metrics.EventsTotal.Inc()
	h.log.Info("event created", zap.String("event_id", ev.ID), zap.String("slug", ev.Slug))
	h.flash(r, "Created "+ev.Title+".")
	redirectAfterSave(w, r)
}

// Edit renders the edit-event form.
func (h *DashboardHandler) Edit(w http.ResponseWriter, r *http.Request) {
	ev, ok := h.managedEvent(w, r)
	if !ok {
		return
	}
	cats, err := h.cats.ListForEvent(r.Context(), ev.ID)
	if err != nil {
		h.log.Error("list event categories", zap.Error(err))
		http.Error(w, "could not load event", http.StatusInternalServerError)
		return
	}
	render(w, "dashboard/event_form.html", EventFormPage{
		BasePage: newDashboardPage(r, "Edit "+ev.Title),
		Event:    ev,
		Form:     eventFormFromEvent(ev, cats),
	})
}

// Update processes the edit-event form submission.
func (h *DashboardHandler) Update(w http.ResponseWriter, r *http.Request) {
	ev, ok := h.managedEvent(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	form := eventFormFromRequest(r)

	in, err := form.input()
	if err == nil {
		err = store.ValidateEvent(in)
	}
	if err == nil {
		_, err = h.events.Update(r.Context(), ev.ID, in)
		if err != nil {
			h.log.Error("update event", zap.String("event_id", ev.ID), zap.Error(err))
			err = errSaveFailed
		}
	}
	if err != nil {
		renderStatus(w, http.StatusUnprocessableEntity, "dashboard/event_form.html", EventFormPage{
			BasePage: newDashboardPage(r, "Edit "+ev.Title),
			Event:    ev,
			Form:     form,
			Error:    err.Error(),
		})
		return
	}
	h.flash(r, "Saved "+in.Title+".")
	redirectAfterSave(w, r)
}

// Delete removes an event that has no orders.
func (h *DashboardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ev, ok := h.managedEvent(w, r)
	if !ok {
		return
	}
	err := h.events.Delete(r.Context(), ev.ID)
	if errors.Is(err, store.ErrHasOrders) {
		http.Error(w, "This event has orders and cannot be deleted.", http.StatusConflict)
		return
	}
	if err != nil {
		h.log.Error("delete event", zap.String("event_id", ev.ID), zap.Error(err))
		http.Error(w, "could not delete event", http.StatusInternalServerError)
		return
	}
	metrics.EventsTotal.Dec()
	h.log.Info("event deleted", zap.String("event_id", ev.ID))
	if isHTMX(r) {
		// Empty body removes the table row.
		w.WriteHeader(http.StatusOK)
		return
	}
	h.flash(r, "Deleted "+ev.Title+".")
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// managedEvent loads the event named by the id URL param and checks the
// current user may manage it.
func (h *DashboardHandler) managedEvent(w http.ResponseWriter, r *http.Request) (*store.Event, bool) {
	user := auth.UserFromContext(r.Context())
	ev, err := h.events.GetByID(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		notFound(w, r)
		return nil, false
	}
	if err != nil {
		h.log.Error("get event", zap.Error(err))
		http.Error(w, "could not load event", http.StatusInternalServerError)
		return nil, false
	}
	if !auth.CanManage(user, ev.OrganizerID) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return nil, false
	}
	return ev, true
}

func redirectAfterSave(w http.ResponseWriter, r *http.Request) {
	if isHTMX(r) {
		w.Header().Set("HX-Redirect", "/dashboard")
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

var (
	errInvalidStartsAt = errors.New("start time must look like 2006-01-02T15:04")
	errInvalidPrice    = errors.New("price must be a number like 15 or 15.50")
	errInvalidCapacity = errors.New("capacity must be a whole number")
	errSaveFailed      = errors.New("could not save the event")
)

func eventFormFromRequest(r *http.Request) EventForm {
	return EventForm{
		Title:       strings.TrimSpace(r.FormValue("title")),
		Description: strings.TrimSpace(r.FormValue("description")),
		Venue:       strings.TrimSpace(r.FormValue("venue")),
		StartsAt:    strings.TrimSpace(r.FormValue("starts_at")),
		Price:       strings.TrimSpace(r.FormValue("price")),
		Capacity:    strings.TrimSpace(r.FormValue("capacity")),
		Status:      r.FormValue("status"),
		Categories:  r.FormValue("categories"),
	}
}

func eventFormFromEvent(ev *store.Event, cats []*store.Category) EventForm {
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = c.Name
	}
	return EventForm{
		Title:       ev.Title,
		Description: ev.Description,
		Venue:       ev.Venue,
		StartsAt:    ev.StartsAt.UTC().Format("2006-01-02T15:04"),
		Price:       strconv.FormatFloat(float64(ev.PriceCents)/100, 'f', -1, 64),
		Capacity:    strconv.Itoa(ev.Capacity),
		Status:      ev.Status,
		Categories:  strings.Join(names, ", "),
	}
}

// input converts the submitted strings into a store.EventInput.
func (f EventForm) input() (store.EventInput, error) {
	in := store.EventInput{
		Title:       f.Title,
		Description: f.Description,
		Venue:       f.Venue,
		Status:      f.Status,
	}
	if f.StartsAt != "" {
		t, err := time.Parse("2006-01-02T15:04", f.StartsAt)
		if err != nil {
			return in, errInvalidStartsAt
		}
		in.StartsAt = t
	}
	if f.Price != "" {
		p, err := strconv.ParseFloat(f.Price, 64)
		if err != nil {
			return in, errInvalidPrice
		}
		in.PriceCents = int(p*100 + 0.5)
		if p < 0 {
			in.PriceCents = -1
		}
	}
	if f.Capacity != "" {
		c, err := strconv.Atoi(f.Capacity)
		if err != nil {
			return in, errInvalidCapacity
		}
		in.Capacity = c
	}
	for _, c := range strings.Split(f.Categories, ",") {
		if c = strings.TrimSpace(c); c != "" {
			in.Categories = append(in.Categories, c)
		}
	}
	return in, nil
}
