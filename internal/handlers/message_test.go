package handlers

import (
	"errors"
	"net/http"
	"testing"

	"github.com/dimitrije/portfolio-api/internal/models"
	"github.com/dimitrije/portfolio-api/internal/services"
	"github.com/dimitrije/portfolio-api/internal/testutil"
	"github.com/dimitrije/portfolio-api/pkg/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMessageHandler_Submit_Validation(t *testing.T) {
	tests := []struct {
		name string
		req  dto.ContactRequest
		want string
	}{
		{"missing name", dto.ContactRequest{Email: "ada@example.com", Message: "Hi"}, "Name is required"},
		{"bad email", dto.ContactRequest{Name: "Ada", Email: "ada@", Message: "Hi"}, msgInvalidEmail},
		{"missing message", dto.ContactRequest{Name: "Ada", Email: "ada@example.com", Message: " "}, "Message is required"},
		{"message is only markup", dto.ContactRequest{Name: "Ada", Email: "ada@example.com", Message: "<script>x()</script>"}, "Message is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			messages := &testutil.MockMessageService{}
			srv := newTestServer(t, testDeps{client: testutil.NewFakeClient(), messages: messages})

			rec := srv.browser(t).POST("/api/v1/contact", tt.req)
			testutil.AssertStatus(t, rec, http.StatusBadRequest)
			assert.Equal(t, tt.want, decode(t, rec).Error)
			messages.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestMessageHandler_Submit(t *testing.T) {
	messages := &testutil.MockMessageService{}
	messages.On("Create", mock.Anything, "Ada", "ada@example.com", "Hello & welcome").
		Return(&models.ContactMessage{ID: 1, Name: "Ada", Email: "ada@example.com", Message: "Hello & welcome"}, nil)

	// the contact form works without any auth provider
	srv := newTestServer(t, testDeps{messages: messages})
	rec := srv.browser(t).POST("/api/v1/contact", dto.ContactRequest{
		Name:    " <i>Ada</i> ",
		Email:   "ada@example.com",
		Message: "Hello & welcome<script>steal()</script>",
	})
	testutil.AssertStatus(t, rec, http.StatusCreated)

	var created models.ContactMessage
	decode(t, rec).into(t, &created)
	assert.Equal(t, int64(1), created.ID)
	messages.AssertExpectations(t)
}

func TestMessageHandler_Submit_StoreFailure(t *testing.T) {
	messages := &testutil.MockMessageService{}
	messages.On("Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("db down"))

	srv := newTestServer(t, testDeps{client: testutil.NewFakeClient(), messages: messages})
	rec := srv.browser(t).POST("/api/v1/contact", dto.ContactRequest{Name: "Ada", Email: "ada@example.com", Message: "Hi"})
	testutil.AssertStatus(t, rec, http.StatusInternalServerError)
	assert.Equal(t, msgMessageSendFail, decode(t, rec).Error)
}

func TestMessageHandler_List(t *testing.T) {
	deps := testDeps{messages: &testutil.MockMessageService{}}
	signedInAs(&deps, "admin@example.com", models.RoleAdmin)
	deps.messages.On("List", mock.Anything).Return([]models.ContactMessage{
		{ID: 2, Name: "Grace"},
		{ID: 1, Name: "Ada"},
	}, nil)

	srv := newTestServer(t, deps)
	rec := srv.browser(t).GET("/admin/messages")
	testutil.AssertStatus(t, rec, http.StatusOK)

	var list []models.ContactMessage
	decode(t, rec).into(t, &list)
	require.Len(t, list, 2)
	assert.Equal(t, "Grace", list[0].Name)
}

func TestMessageHandler_Delete(t *testing.T) {
	deps := testDeps{messages: &testutil.MockMessageService{}}
	signedInAs(&deps, "admin@example.com", models.RoleAdmin)
	deps.messages.On("Delete", mock.Anything, int64(1)).Return(nil)
	deps.messages.On("Delete", mock.Anything, int64(2)).Return(services.ErrMessageNotFound)
	deps.messages.On("Delete", mock.Anything, int64(3)).Return(errors.New("db down"))

	srv := newTestServer(t, deps)
	browser := srv.browser(t)

	rec := browser.DELETE("/admin/messages/1")
	testutil.AssertStatus(t, rec, http.StatusOK)
	assert.Equal(t, []dto.Notification{{Kind: "success", Message: msgMessageDeleted}}, decode(t, rec).Notifications)

	rec = browser.DELETE("/admin/messages/2")
	testutil.AssertStatus(t, rec, http.StatusNotFound)

	rec = browser.DELETE("/admin/messages/3")
	testutil.AssertStatus(t, rec, http.StatusInternalServerError)
	assert.Equal(t, []dto.Notification{{Kind: "error", Message: msgMessageDelFail}}, decode(t, rec).Notifications)

	rec = browser.DELETE("/admin/messages/zero")
	testutil.AssertStatus(t, rec, http.StatusBadRequest)
}
