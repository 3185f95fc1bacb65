package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foxxcyber/hisab-kitab/internal/models"
)

// brokenDeletes archives bills but cannot remove them
type brokenDeletes struct {
	*fakeObjectStore
}

func (s brokenDeletes) DeleteMultiple(ctx context.Context, keys []string) error {
	return errors.New("bucket unreachable")
}

func archivedUser(store *memStore, objects *fakeObjectStore, id int) []string {
	store.addUser(id, "Asha", "asha@example.com")
	keys := []string{"bills/a.jpg", "bills/b.png"}
	store.billKeys[id] = keys
	for _, k := range keys {
		objects.objects[k] = []byte("image")
	}
	return keys
}

func TestDeleteAccountRemovesArchivedBills(t *testing.T) {
	store := newMemStore()
	objects := newFakeObjectStore()
	keys := archivedUser(store, objects, 7)
	food := store.addCategory(7, "Food", models.EntryExpense, 0)
	store.addTransaction(7, food.ID, 40, models.EntryExpense, testNow)

	h := storeHandler(store)
	h.bills = objects
	app := newTestApp(7, models.RoleUser)
	app.Delete("/users/me", h.DeleteAccount)

	status, body := doJSON(t, app, http.MethodDelete, "/users/me", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "account deleted", messageOf(t, body))

	assert.Equal(t, []string{"ListBillScanKeys", "DeleteUser"}, store.calls)
	assert.ElementsMatch(t, keys, objects.removed)
	assert.Empty(t, objects.objects)
	assert.NotContains(t, store.users, 7)
	assert.Empty(t, store.transactions)

	status, body = doJSON(t, app, http.MethodDelete, "/users/me", "")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "user not found", body.Error)
}

func TestDeleteAccountWithoutArchive(t *testing.T) {
	store := newMemStore()
	store.addUser(7, "Asha", "asha@example.com")
	h := storeHandler(store)
	app := newTestApp(7, models.RoleUser)
	app.Delete("/users/me", h.DeleteAccount)

	status, _ := doJSON(t, app, http.MethodDelete, "/users/me", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []string{"DeleteUser"}, store.calls)
}

func TestDeleteAccountToleratesImageCleanupFailure(t *testing.T) {
	store := newMemStore()
	objects := newFakeObjectStore()
	archivedUser(store, objects, 7)

	h := storeHandler(store)
	h.bills = brokenDeletes{objects}
	app := newTestApp(7, models.RoleUser)
	app.Delete("/users/me", h.DeleteAccount)

	status, _ := doJSON(t, app, http.MethodDelete, "/users/me", "")
	assert.Equal(t, http.StatusOK, status)
	assert.NotContains(t, store.users, 7)
}

func TestAdminDeleteUserRemovesArchivedBills(t *testing.T) {
	store := newMemStore()
	objects := newFakeObjectStore()
	keys := archivedUser(store, objects, 9)
	store.addUser(1, "Admin", "admin@example.com")

	h := storeHandler(store)
	h.bills = objects
	app := newAdminApp(h)

	status, body := doJSON(t, app, http.MethodDelete, "/admin/users/9", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "user deleted", messageOf(t, body))
	assert.ElementsMatch(t, keys, objects.removed)
	assert.Empty(t, objects.objects)
	assert.NotContains(t, store.users, 9)
	assert.Contains(t, store.users, 1)

	status, body = doJSON(t, app, http.MethodDelete, "/admin/users/42", "")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "user not found", body.Error)
}
