package gifts_test

import (
	"net/http"
	"testing"

	"go.uber.org/zap"

	"underwraps/internal/app/features/gifts"
	preferencestore "underwraps/internal/app/store/preferences"
	"underwraps/internal/testutil"
)

func newHandler(t *testing.T) (*gifts.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return gifts.NewHandler(preferencestore.New(db), zap.NewNop()), testutil.NewFixtures(t, db)
}

func TestAddAndList(t *testing.T) {
	h, fixtures := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := testutil.AsTestUser(fixtures.CreateUser(ctx, "Mara", ""))

	req := testutil.NewJSONRequest("POST", "/preferences", map[string]string{"text": "a good chef's knife"})
	req = testutil.WithUser(req, u)
	rec := testutil.NewRecorder()
	h.HandleAdd(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusCreated)

	req = testutil.NewAuthenticatedRequest("GET", "/preferences", u)
	rec = testutil.NewRecorder()
	h.HandleList(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusOK)

	var body struct {
		Preferences []struct {
			ID   string `json:"id"`
			Text string `json:"text"`
		} `json:"preferences"`
	}
	rec.DecodeJSON(t, &body)
	if len(body.Preferences) != 1 || body.Preferences[0].Text != "a good chef's knife" {
		t.Fatalf("preferences = %+v", body.Preferences)
	}
}

func TestAddStripsMarkup(t *testing.T) {
	h, fixtures := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := testutil.AsTestUser(fixtures.CreateUser(ctx, "Mara", ""))

	req := testutil.NewJSONRequest("POST", "/preferences", map[string]string{
		"text": "<script>alert(1)</script>warm socks",
	})
	req = testutil.WithUser(req, u)
	rec := testutil.NewRecorder()
	h.HandleAdd(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusCreated)

	var body struct {
		Text string `json:"text"`
	}
	rec.DecodeJSON(t, &body)
	if body.Text != "warm socks" {
		t.Errorf("text = %q, want markup stripped", body.Text)
	}
}

func TestDeleteScopedToOwner(t *testing.T) {
	h, fixtures := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fixtures.CreateUser(ctx, "Mara", "")
	other := fixtures.CreateUser(ctx, "Theo", "")
	p := fixtures.CreatePreference(ctx, owner.ID, "warm socks")

	// Another user cannot delete it.
	req := testutil.NewAuthenticatedRequest("DELETE", "/preferences/"+p.ID.Hex(), testutil.AsTestUser(other))
	req = testutil.WithChiURLParam(req, "id", p.ID.Hex())
	rec := testutil.NewRecorder()
	h.HandleDelete(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusNotFound)

	// The owner can.
	req = testutil.NewAuthenticatedRequest("DELETE", "/preferences/"+p.ID.Hex(), testutil.AsTestUser(owner))
	req = testutil.WithChiURLParam(req, "id", p.ID.Hex())
	rec = testutil.NewRecorder()
	h.HandleDelete(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusNoContent)
}
