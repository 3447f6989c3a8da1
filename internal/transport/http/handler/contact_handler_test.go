package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-gin-contacts/internal/domain"
)

func init() { gin.SetMode(gin.TestMode) }

// memContacts 内存版仓储，语义与 repo.ContactRepo 一致
type memContacts struct {
	mu   sync.Mutex
	seq  uint
	rows map[uint]domain.Contact
}

func newMemContacts() *memContacts { return &memContacts{rows: map[uint]domain.Contact{}} }

func (m *memContacts) owned(ownerID uint) []domain.Contact {
	var out []domain.Contact
	for _, c := range m.rows {
		if c.UserID == ownerID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memContacts) List(_ context.Context, ownerID uint, skip, limit int) ([]domain.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := m.owned(ownerID)
	if skip >= len(all) {
		return nil, nil
	}
	all = all[skip:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (m *memContacts) Get(_ context.Context, ownerID, id uint) (*domain.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.rows[id]
	if !ok || c.UserID != ownerID {
		return nil, nil
	}
	return &c, nil
}

func (m *memContacts) emailTaken(email string, except uint) bool {
	for id, c := range m.rows {
		if id != except && c.Email == email {
			return true
		}
	}
	return false
}

func (m *memContacts) Create(_ context.Context, ownerID uint, in domain.ContactInput) (*domain.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.emailTaken(in.Email, 0) {
		return nil, domain.ErrDuplicateEmail
	}
	m.seq++
	c := in.NewContact(ownerID)
	c.ID = m.seq
	m.rows[c.ID] = c
	return &c, nil
}

func (m *memContacts) Update(_ context.Context, ownerID, id uint, p domain.ContactPatch) (*domain.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.rows[id]
	if !ok || c.UserID != ownerID {
		return nil, nil
	}
	if p.Email != nil && m.emailTaken(*p.Email, id) {
		return nil, domain.ErrDuplicateEmail
	}
	p.Apply(&c)
	m.rows[id] = c
	return &c, nil
}

func (m *memContacts) Delete(_ context.Context, ownerID, id uint) (*domain.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.rows[id]
	if !ok || c.UserID != ownerID {
		return nil, nil
	}
	delete(m.rows, id)
	return &c, nil
}

func (m *memContacts) Search(_ context.Context, ownerID uint, q string) ([]domain.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q = strings.ToLower(q)
	var out []domain.Contact
	for _, c := range m.owned(ownerID) {
		if strings.Contains(strings.ToLower(c.FirstName), q) ||
			strings.Contains(strings.ToLower(c.LastName), q) ||
			strings.Contains(strings.ToLower(c.Email), q) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memContacts) UpcomingBirthdays(_ context.Context, ownerID uint) ([]domain.Contact, error) {
	return nil, nil
}

func (m *memContacts) CountByOwner(_ context.Context, ownerID uint) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.owned(ownerID))), nil
}

// 测试用鉴权：X-User 头即当前用户 id
func fakeAuth(c *gin.Context) {
	if id, err := strconv.ParseUint(c.GetHeader("X-User"), 10, 64); err == nil {
		c.Set("userId", uint(id))
		c.Set("role", domain.RoleUser)
	}
	c.Next()
}

func newContactServer(repo domain.ContactRepository, guards ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	g := r.Group("/api/v1", fakeAuth)
	NewContactHandler(repo).Mount(g, guards...)
	return r
}

type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

func do(t *testing.T, r http.Handler, method, path string, user uint, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != 0 {
		req.Header.Set("X-User", strconv.FormatUint(uint64(user), 10))
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func annLee() map[string]any {
	return map[string]any{
		"first_name":   "Ann",
		"last_name":    "Lee",
		"email":        "ann@x.com",
		"phone_number": "555",
		"birthday":     "1990-05-01",
	}
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func TestContacts_CreateThenGet(t *testing.T) {
	r := newContactServer(newMemContacts())

	w, env := do(t, r, http.MethodPost, "/api/v1/contacts", 7, annLee())
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[domain.Contact](t, env.Data)
	assert.Equal(t, uint(7), created.UserID)
	assert.Equal(t, "1990-05-01", created.Birthday.String())

	w, env = do(t, r, http.MethodGet, "/api/v1/contacts/"+strconv.Itoa(int(created.ID)), 7, nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[domain.Contact](t, env.Data)
	assert.Equal(t, created, got)
}

func TestContacts_CrossUserIsolation(t *testing.T) {
	repo := newMemContacts()
	r := newContactServer(repo)

	_, env := do(t, r, http.MethodPost, "/api/v1/contacts", 7, annLee())
	id := strconv.Itoa(int(decode[domain.Contact](t, env.Data).ID))

	w, env := do(t, r, http.MethodGet, "/api/v1/contacts/"+id, 8, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 404, env.Code)

	w, _ = do(t, r, http.MethodPatch, "/api/v1/contacts/"+id, 8, map[string]any{"first_name": "Eve"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = do(t, r, http.MethodDelete, "/api/v1/contacts/"+id, 8, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	_, env = do(t, r, http.MethodGet, "/api/v1/contacts/search?query=ann", 8, nil)
	assert.Empty(t, decode[[]domain.Contact](t, env.Data))

	_, env = do(t, r, http.MethodGet, "/api/v1/contacts", 8, nil)
	assert.Equal(t, "[]", string(env.Data))

	// 用户 7 的数据未被改动
	_, env = do(t, r, http.MethodGet, "/api/v1/contacts/"+id, 7, nil)
	assert.Equal(t, "Ann", decode[domain.Contact](t, env.Data).FirstName)
}

func TestContacts_PartialUpdate(t *testing.T) {
	r := newContactServer(newMemContacts())
	_, env := do(t, r, http.MethodPost, "/api/v1/contacts", 7, annLee())
	before := decode[domain.Contact](t, env.Data)
	id := strconv.Itoa(int(before.ID))

	w, env := do(t, r, http.MethodPatch, "/api/v1/contacts/"+id, 7, map[string]any{"phone_number": "777"})
	require.Equal(t, http.StatusOK, w.Code)
	after := decode[domain.Contact](t, env.Data)
	assert.Equal(t, "777", after.PhoneNumber)
	before.PhoneNumber = "777"
	assert.Equal(t, before, after)
}

func TestContacts_PutReplaces(t *testing.T) {
	r := newContactServer(newMemContacts())
	created := annLee()
	created["additional_info"] = "met at work"
	_, env := do(t, r, http.MethodPost, "/api/v1/contacts", 7, created)
	id := strconv.Itoa(int(decode[domain.Contact](t, env.Data).ID))

	body := annLee()
	body["first_name"] = "Anna"
	body["birthday"] = "1991-06-02"
	w, env := do(t, r, http.MethodPut, "/api/v1/contacts/"+id, 7, body)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[domain.Contact](t, env.Data)
	assert.Equal(t, "Anna", got.FirstName)
	assert.Equal(t, "1991-06-02", got.Birthday.String())
	// 未提供 additional_info 即清空
	assert.Nil(t, got.AdditionalInfo)

	_, env = do(t, r, http.MethodGet, "/api/v1/contacts/"+id, 7, nil)
	assert.Nil(t, decode[domain.Contact](t, env.Data).AdditionalInfo)

	// PUT 需要完整字段
	w, _ = do(t, r, http.MethodPut, "/api/v1/contacts/"+id, 7, map[string]any{"first_name": "X"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestContacts_PatchRejectsBlankRequiredFields(t *testing.T) {
	r := newContactServer(newMemContacts())
	_, env := do(t, r, http.MethodPost, "/api/v1/contacts", 7, annLee())
	id := strconv.Itoa(int(decode[domain.Contact](t, env.Data).ID))

	for _, field := range []string{"first_name", "last_name", "phone_number"} {
		w, _ := do(t, r, http.MethodPatch, "/api/v1/contacts/"+id, 7, map[string]any{field: ""})
		assert.Equal(t, http.StatusBadRequest, w.Code, field)
	}

	_, env = do(t, r, http.MethodGet, "/api/v1/contacts/"+id, 7, nil)
	got := decode[domain.Contact](t, env.Data)
	assert.Equal(t, "Ann", got.FirstName)
	assert.Equal(t, "555", got.PhoneNumber)
}

func TestContacts_DeleteThenGet(t *testing.T) {
	r := newContactServer(newMemContacts())
	_, env := do(t, r, http.MethodPost, "/api/v1/contacts", 7, annLee())
	created := decode[domain.Contact](t, env.Data)
	id := strconv.Itoa(int(created.ID))

	w, env := do(t, r, http.MethodDelete, "/api/v1/contacts/"+id, 7, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, created, decode[domain.Contact](t, env.Data))

	w, _ = do(t, r, http.MethodGet, "/api/v1/contacts/"+id, 7, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = do(t, r, http.MethodDelete, "/api/v1/contacts/"+id, 7, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestContacts_SearchEmptyMatchesAllOwned(t *testing.T) {
	r := newContactServer(newMemContacts())
	do(t, r, http.MethodPost, "/api/v1/contacts", 7, annLee())
	bob := annLee()
	bob["first_name"], bob["last_name"], bob["email"] = "Bob", "Stone", "bob@y.com"
	do(t, r, http.MethodPost, "/api/v1/contacts", 7, bob)
	eve := annLee()
	eve["email"] = "eve@z.com"
	do(t, r, http.MethodPost, "/api/v1/contacts", 8, eve)

	_, withEmpty := do(t, r, http.MethodGet, "/api/v1/contacts/search?query=", 7, nil)
	_, absent := do(t, r, http.MethodGet, "/api/v1/contacts/search", 7, nil)
	assert.JSONEq(t, string(withEmpty.Data), string(absent.Data))
	assert.Len(t, decode[[]domain.Contact](t, absent.Data), 2)

	_, env := do(t, r, http.MethodGet, "/api/v1/contacts/search?query=LEE", 7, nil)
	found := decode[[]domain.Contact](t, env.Data)
	require.Len(t, found, 1)
	assert.Equal(t, "ann@x.com", found[0].Email)
}

func TestContacts_ListPaging(t *testing.T) {
	r := newContactServer(newMemContacts())
	for i := 0; i < 3; i++ {
		c := annLee()
		c["email"] = "c" + strconv.Itoa(i) + "@x.com"
		do(t, r, http.MethodPost, "/api/v1/contacts", 7, c)
	}

	_, env := do(t, r, http.MethodGet, "/api/v1/contacts?skip=1&limit=1", 7, nil)
	page := decode[[]domain.Contact](t, env.Data)
	require.Len(t, page, 1)
	assert.Equal(t, "c1@x.com", page[0].Email)

	_, env = do(t, r, http.MethodGet, "/api/v1/contacts?limit=1000", 7, nil)
	assert.Len(t, decode[[]domain.Contact](t, env.Data), 3)

	w, _ := do(t, r, http.MethodGet, "/api/v1/contacts?skip=-1", 7, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestContacts_ValidationAndConflict(t *testing.T) {
	r := newContactServer(newMemContacts())

	noBirthday := annLee()
	delete(noBirthday, "birthday")
	w, _ := do(t, r, http.MethodPost, "/api/v1/contacts", 7, noBirthday)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	badEmail := annLee()
	badEmail["email"] = "not-an-email"
	w, _ = do(t, r, http.MethodPost, "/api/v1/contacts", 7, badEmail)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, r, http.MethodPost, "/api/v1/contacts", 7, annLee())
	require.Equal(t, http.StatusCreated, w.Code)
	// email 全局唯一，其他用户也不能重复
	w, env := do(t, r, http.MethodPost, "/api/v1/contacts", 8, annLee())
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, 409, env.Code)

	w, _ = do(t, r, http.MethodGet, "/api/v1/contacts/abc", 7, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestContacts_Unauthenticated(t *testing.T) {
	r := newContactServer(newMemContacts())
	w, env := do(t, r, http.MethodGet, "/api/v1/contacts", 0, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, 401, env.Code)
}

func TestContacts_CreateGuard(t *testing.T) {
	blocked := func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"code": 429, "msg": "too many requests", "data": gin.H{}})
	}
	r := newContactServer(newMemContacts(), blocked)

	w, _ := do(t, r, http.MethodPost, "/api/v1/contacts", 7, annLee())
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	// 只限创建接口
	w, _ = do(t, r, http.MethodGet, "/api/v1/contacts", 7, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
