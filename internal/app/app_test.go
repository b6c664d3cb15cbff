package app_test

import (
	"net/http"
	"testing"
	"time"

	"jobboard_backend/internal/models"
	"jobboard_backend/test/helpers"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type jobBody struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	CreatorID string `json:"creator_id"`
}

type applicationBody struct {
	ID         string                   `json:"id"`
	JobTitle   string                   `json:"job_title"`
	Status     models.ApplicationStatus `json:"status"`
	CanMessage bool                     `json:"can_message"`
	ChannelKey string                   `json:"channel_key"`
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Domain  string `json:"domain"`
		Message string `json:"message"`
	} `json:"error"`
}

type messageList struct {
	Messages []models.Message `json:"messages"`
	Total    int              `json:"total"`
}

func createJob(t *testing.T, ts *helpers.TestServer, token, title string) jobBody {
	t.Helper()
	res, body := ts.SendRequest(t, "POST", "/api/v1/jobs", token, map[string]interface{}{
		"title":       title,
		"location":    "Pune",
		"salary":      25000,
		"description": "Night shift, warehouse",
	})
	require.Equal(t, http.StatusCreated, res.StatusCode, body)

	var job jobBody
	helpers.DecodeJSON(t, body, &job)
	return job
}

func apply(t *testing.T, ts *helpers.TestServer, token, jobID string) applicationBody {
	t.Helper()
	res, body := ts.SendRequest(t, "POST", "/api/v1/jobs/"+jobID+"/applications", token, helpers.ApplyBody("Asha Patil"))
	require.Equal(t, http.StatusCreated, res.StatusCode, body)

	var app applicationBody
	helpers.DecodeJSON(t, body, &app)
	return app
}

func assertError(t *testing.T, body string, code string) {
	t.Helper()
	var e errorBody
	helpers.DecodeJSON(t, body, &e)
	assert.Equal(t, code, e.Error.Code, body)
}

// TestHireAndChatFlow - вакансия, отклик, принятие, сообщение и чтение с другой стороны
func TestHireAndChatFlow(t *testing.T) {
	ts := helpers.NewTestServer(t)
	creator := ts.Token(t, "creator-1", models.UserRoleCreator)
	employee := ts.Token(t, "employee-1", models.UserRoleEmployee)

	job := createJob(t, ts, creator, "Warehouse Loader")
	assert.Equal(t, "creator-1", job.CreatorID)

	app := apply(t, ts, employee, job.ID)
	assert.Equal(t, models.ApplicationStatusPending, app.Status)
	assert.Equal(t, "Warehouse Loader", app.JobTitle)
	assert.False(t, app.CanMessage)

	res, body := ts.SendRequest(t, "GET", "/api/v1/applications/pending-count", creator, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.JSONEq(t, `{"count":1}`, body)

	// до принятия переписка закрыта
	closedKey := job.ID + "_creator-1_employee-1"
	res, body = ts.SendRequest(t, "POST", "/api/v1/chats/"+closedKey+"/messages", employee, map[string]string{"text": "hi"})
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
	assertError(t, body, "CHANNEL_CLOSED")

	res, body = ts.SendRequest(t, "PUT", "/api/v1/applications/"+app.ID+"/accept", creator, nil)
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	var accepted applicationBody
	helpers.DecodeJSON(t, body, &accepted)
	assert.Equal(t, models.ApplicationStatusAccepted, accepted.Status)
	assert.True(t, accepted.CanMessage)
	assert.Equal(t, closedKey, accepted.ChannelKey)

	res, body = ts.SendRequest(t, "GET", "/api/v1/applications/pending-count", creator, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.JSONEq(t, `{"count":0}`, body)

	// повторное решение невозможно
	res, body = ts.SendRequest(t, "PUT", "/api/v1/applications/"+app.ID+"/reject", creator, nil)
	assert.Equal(t, http.StatusConflict, res.StatusCode)
	assertError(t, body, "INVALID_STATUS")

	res, body = ts.SendRequest(t, "GET", "/api/v1/applications/"+app.ID+"/channel", employee, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, `"reachable":true`)
	assert.Contains(t, body, `"counterpart_id":"creator-1"`)

	res, body = ts.SendRequest(t, "POST", "/api/v1/chats/"+closedKey+"/messages", employee, map[string]string{"text": "hello"})
	require.Equal(t, http.StatusCreated, res.StatusCode, body)

	res, body = ts.SendRequest(t, "GET", "/api/v1/chats/"+closedKey+"/messages", creator, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var list messageList
	helpers.DecodeJSON(t, body, &list)
	require.Len(t, list.Messages, 1)
	assert.Equal(t, "hello", list.Messages[0].Text)
	assert.Equal(t, "employee-1", list.Messages[0].SenderID)
	// HTTP-чтение не отмечает прочтение
	assert.False(t, list.Messages[0].Read)

	// посторонний не видит переписку
	stranger := ts.Token(t, "employee-2", models.UserRoleEmployee)
	res, _ = ts.SendRequest(t, "GET", "/api/v1/chats/"+closedKey+"/messages", stranger, nil)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
}

func TestRoleGates(t *testing.T) {
	ts := helpers.NewTestServer(t)
	creator := ts.Token(t, "creator-1", models.UserRoleCreator)
	employee := ts.Token(t, "employee-1", models.UserRoleEmployee)

	res, _ := ts.SendRequest(t, "POST", "/api/v1/jobs", employee, map[string]interface{}{
		"title": "x", "location": "y", "salary": 1, "description": "z",
	})
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	job := createJob(t, ts, creator, "Driver")

	res, _ = ts.SendRequest(t, "POST", "/api/v1/jobs/"+job.ID+"/applications", creator, helpers.ApplyBody("Self"))
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	res, body := ts.SendRequest(t, "GET", "/api/v1/applications/my", "", nil)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	assertError(t, body, "UNAUTHORIZED")

	res, body = ts.SendRequest(t, "GET", "/api/v1/applications/my", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	assertError(t, body, "INVALID_TOKEN")

	// список вакансий публичный
	res, body = ts.SendRequest(t, "GET", "/api/v1/jobs", "", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, `"total":1`)
}

func TestApplyValidationAndDuplicates(t *testing.T) {
	ts := helpers.NewTestServer(t)
	creator := ts.Token(t, "creator-1", models.UserRoleCreator)
	employee := ts.Token(t, "employee-1", models.UserRoleEmployee)
	job := createJob(t, ts, creator, "Cook")

	bad := helpers.ApplyBody("Asha")
	bad["national_id"] = "123456789012"
	res, body := ts.SendRequest(t, "POST", "/api/v1/jobs/"+job.ID+"/applications", employee, bad)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assertError(t, body, "VALIDATION_FAILED")
	assert.Contains(t, body, "national_id")

	apply(t, ts, employee, job.ID)

	res, body = ts.SendRequest(t, "POST", "/api/v1/jobs/"+job.ID+"/applications", employee, helpers.ApplyBody("Asha"))
	assert.Equal(t, http.StatusConflict, res.StatusCode)
	assertError(t, body, "ALREADY_EXISTS")

	res, body = ts.SendRequest(t, "POST", "/api/v1/jobs/00000000-0000-4000-8000-000000000000/applications", employee, helpers.ApplyBody("Asha"))
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assertError(t, body, "STALE_REFERENCE")

	noAge := helpers.ApplyBody("Asha")
	delete(noAge, "age")
	delete(noAge, "experience")
	res, body = ts.SendRequest(t, "POST", "/api/v1/jobs/"+job.ID+"/applications", ts.Token(t, "employee-2", models.UserRoleEmployee), noAge)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assertError(t, body, "VALIDATION_FAILED")
	assert.Contains(t, body, `"age"`)
	assert.Contains(t, body, `"experience"`)
}

// TestMalformedIDs - кривой id отвечает 400 до обращения к хранилищу
func TestMalformedIDs(t *testing.T) {
	ts := helpers.NewTestServer(t)
	creator := ts.Token(t, "creator-1", models.UserRoleCreator)
	employee := ts.Token(t, "employee-1", models.UserRoleEmployee)

	cases := []struct {
		method, path, token string
		body                interface{}
	}{
		{"GET", "/api/v1/jobs/not-a-uuid", "", nil},
		{"PUT", "/api/v1/jobs/not-a-uuid", creator, map[string]interface{}{"title": "x"}},
		{"DELETE", "/api/v1/jobs/not-a-uuid", creator, nil},
		{"POST", "/api/v1/jobs/not-a-uuid/applications", employee, helpers.ApplyBody("Asha")},
		{"GET", "/api/v1/jobs/not-a-uuid/applications", creator, nil},
		{"PUT", "/api/v1/applications/not-a-uuid/accept", creator, nil},
		{"PUT", "/api/v1/applications/not-a-uuid/reject", creator, nil},
		{"GET", "/api/v1/applications/not-a-uuid", employee, nil},
		{"GET", "/api/v1/applications/not-a-uuid/channel", employee, nil},
		{"GET", "/api/v1/chats/not-a-uuid_creator-1_employee-1/messages", employee, nil},
	}
	for _, tc := range cases {
		res, body := ts.SendRequest(t, tc.method, tc.path, tc.token, tc.body)
		assert.Equal(t, http.StatusBadRequest, res.StatusCode, tc.method+" "+tc.path)
		assertError(t, body, "VALIDATION_FAILED")
	}
}

func TestJobSearch(t *testing.T) {
	ts := helpers.NewTestServer(t)
	creator := ts.Token(t, "creator-1", models.UserRoleCreator)

	for _, job := range []map[string]interface{}{
		{"title": "Senior Welder", "location": "Pune", "salary": 30000, "description": "d"},
		{"title": "Driver", "location": "Mumbai", "salary": 18000, "description": "d"},
		{"title": "Cook", "location": "Navi Mumbai", "salary": 12000, "description": "d"},
	} {
		res, body := ts.SendRequest(t, "POST", "/api/v1/jobs", creator, job)
		require.Equal(t, http.StatusCreated, res.StatusCode, body)
	}

	res, body := ts.SendRequest(t, "GET", "/api/v1/jobs?q=mumbai", "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, `"total":2`)

	res, body = ts.SendRequest(t, "GET", "/api/v1/jobs?q=WELD&max_salary=30000", "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, `"total":1`)
	assert.Contains(t, body, "Senior Welder")

	res, body = ts.SendRequest(t, "GET", "/api/v1/jobs?min_salary=15000&max_salary=20000", "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, `"total":1`)
	assert.Contains(t, body, "Driver")

	res, body = ts.SendRequest(t, "GET", "/api/v1/jobs?min_salary=20000&max_salary=100", "", nil)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assertError(t, body, "VALIDATION_FAILED")
	assert.Contains(t, body, "max_salary")

	res, _ = ts.SendRequest(t, "GET", "/api/v1/jobs?min_salary=lots", "", nil)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res, _ = ts.SendRequest(t, "GET", "/api/v1/jobs?min_salary=-5", "", nil)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestSnapshotSurvivesJobEdit(t *testing.T) {
	ts := helpers.NewTestServer(t)
	creator := ts.Token(t, "creator-1", models.UserRoleCreator)
	employee := ts.Token(t, "employee-1", models.UserRoleEmployee)
	job := createJob(t, ts, creator, "Painter")
	apply(t, ts, employee, job.ID)

	res, _ := ts.SendRequest(t, "PUT", "/api/v1/jobs/"+job.ID, creator, map[string]interface{}{"title": "Senior Painter"})
	require.Equal(t, http.StatusOK, res.StatusCode)

	res, body := ts.SendRequest(t, "GET", "/api/v1/applications/my", employee, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, `"job_title":"Painter"`)
	assert.NotContains(t, body, "Senior Painter")
}

func TestHealthAndMetrics(t *testing.T) {
	ts := helpers.NewTestServer(t)

	res, body := ts.SendRequest(t, "GET", "/health", "", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, body)

	res, body = ts.SendRequest(t, "GET", "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, "jobboard_http_requests_total")

	res, body = ts.SendRequest(t, "GET", "/swagger/doc.json", "", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, `"basePath": "/api/v1"`)
	assert.Contains(t, body, "/jobs/{jobId}/applications")
}

type wsEvent struct {
	Type       string      `json:"type"`
	ChannelKey string      `json:"channel_key"`
	Data       interface{} `json:"data"`
}

func readUntil(t *testing.T, conn *websocket.Conn, match func(ev wsEvent) bool) wsEvent {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		require.NoError(t, conn.SetReadDeadline(deadline))
		var ev wsEvent
		require.NoError(t, conn.ReadJSON(&ev))
		if match(ev) {
			return ev
		}
	}
}

// TestWebSocketSubscriptionMarksRead - открытая подписка получателя отмечает входящее прочитанным
func TestWebSocketSubscriptionMarksRead(t *testing.T) {
	ts := helpers.NewTestServer(t)
	creator := ts.Token(t, "creator-1", models.UserRoleCreator)
	employee := ts.Token(t, "employee-1", models.UserRoleEmployee)

	job := createJob(t, ts, creator, "Welder")
	app := apply(t, ts, employee, job.ID)
	res, _ := ts.SendRequest(t, "PUT", "/api/v1/applications/"+app.ID+"/accept", creator, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	key := job.ID + "_creator-1_employee-1"

	conn, _, err := websocket.DefaultDialer.Dial(ts.WSURL(creator), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(map[string]interface{}{
		"action": "subscribe",
		"data":   map[string]string{"channel_key": key},
	}))
	first := readUntil(t, conn, func(ev wsEvent) bool { return ev.Type == "snapshot" })
	assert.Equal(t, key, first.ChannelKey)

	res, body := ts.SendRequest(t, "POST", "/api/v1/chats/"+key+"/messages", employee, map[string]string{"text": "hello"})
	require.Equal(t, http.StatusCreated, res.StatusCode, body)

	// hello приходит сначала непрочитанным, затем прочитанным
	unread := readUntil(t, conn, func(ev wsEvent) bool {
		msgs, ok := ev.Data.([]interface{})
		return ev.Type == "snapshot" && ok && len(msgs) == 1
	})
	firstMsg := unread.Data.([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "hello", firstMsg["text"])
	assert.Equal(t, false, firstMsg["read"])

	var sawNotice, sawRead bool
	readUntil(t, conn, func(ev wsEvent) bool {
		switch ev.Type {
		case "new_message":
			sawNotice = true
		case "snapshot":
			if msgs, ok := ev.Data.([]interface{}); ok && len(msgs) == 1 {
				sawRead = sawRead || msgs[0].(map[string]interface{})["read"] == true
			}
		}
		return sawNotice && sawRead
	})

	assert.Eventually(t, func() bool {
		_, body := ts.SendRequest(t, "GET", "/api/v1/chats/"+key+"/messages", employee, nil)
		var list messageList
		helpers.DecodeJSON(t, body, &list)
		return len(list.Messages) == 1 && list.Messages[0].Read
	}, 3*time.Second, 20*time.Millisecond)

	// отказ от подписки отпускает слушателя брокера
	require.NoError(t, conn.WriteJSON(map[string]interface{}{
		"action": "unsubscribe",
		"data":   map[string]string{"channel_key": key},
	}))
	chatTopic := "chat:" + key
	assert.Eventually(t, func() bool {
		return ts.App.Hub.ListenerCount(chatTopic) == 0
	}, 3*time.Second, 20*time.Millisecond)
}

func TestWebSocketWatchUnreadAndDisconnect(t *testing.T) {
	ts := helpers.NewTestServer(t)
	creator := ts.Token(t, "creator-1", models.UserRoleCreator)
	employee := ts.Token(t, "employee-1", models.UserRoleEmployee)

	job := createJob(t, ts, creator, "Electrician")
	app := apply(t, ts, employee, job.ID)
	res, _ := ts.SendRequest(t, "PUT", "/api/v1/applications/"+app.ID+"/accept", creator, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	key := job.ID + "_creator-1_employee-1"

	conn, _, err := websocket.DefaultDialer.Dial(ts.WSURL(creator), nil)
	require.NoError(t, err)

	require.NoError(t, conn.WriteJSON(map[string]interface{}{"action": "watch_unread"}))
	initial := readUntil(t, conn, func(ev wsEvent) bool { return ev.Type == "unread" })
	assert.Equal(t, map[string]interface{}{key: false}, initial.Data)

	res, _ = ts.SendRequest(t, "POST", "/api/v1/chats/"+key+"/messages", employee, map[string]string{"text": "are you there?"})
	require.Equal(t, http.StatusCreated, res.StatusCode)

	readUntil(t, conn, func(ev wsEvent) bool {
		m, ok := ev.Data.(map[string]interface{})
		return ev.Type == "unread" && ok && m[key] == true
	})

	require.NoError(t, conn.WriteJSON(map[string]interface{}{"action": "watch_pending"}))
	pending := readUntil(t, conn, func(ev wsEvent) bool { return ev.Type == "pending" })
	assert.Equal(t, map[string]interface{}{"count": float64(0)}, pending.Data)

	require.NoError(t, conn.WriteJSON(map[string]interface{}{"action": "dance"}))
	readUntil(t, conn, func(ev wsEvent) bool { return ev.Type == "error" })

	require.NoError(t, conn.WriteJSON(map[string]interface{}{
		"action": "subscribe",
		"data":   map[string]string{"channel_key": "not-a-uuid_creator-1_employee-1"},
	}))
	bad := readUntil(t, conn, func(ev wsEvent) bool { return ev.Type == "error" })
	assert.Equal(t, "not-a-uuid_creator-1_employee-1", bad.ChannelKey)

	// после разрыва соединения все слушатели отпущены
	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool {
		return ts.App.Hub.TotalListeners() == 0 && ts.App.Manager.GetClientCount() == 0
	}, 3*time.Second, 20*time.Millisecond)
}
