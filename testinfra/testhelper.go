package testinfra

import (
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"strings"

	"groundwork/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
)

// BuildSecCtx build security context with the given perms, e.g. "manager_100"
func BuildSecCtx(uid types.ID, perms ...string) *session.Context {
	projectRoles := session.ProjectRoles{}
	for _, perm := range perms {
		idx := strings.Index(perm, "_")
		if idx > 0 {
			role := perm[0:idx]
			projectId, err := types.ParseID(perm[idx+1:])
			if err != nil {
				continue
			}
			projectRoles = append(projectRoles, session.ProjectRole{ProjectID: projectId, Role: role})
		}
	}

	return &session.Context{Token: "test-token", Identity: session.Identity{ID: uid}, Perms: perms, ProjectRoles: projectRoles}
}

// ExecuteRequest run the request through the engine, returning status, body
// and the raw response.
func ExecuteRequest(req *http.Request, engine *gin.Engine) (int, string, *http.Response) {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	resp := w.Result()
	bodyBytes, _ := ioutil.ReadAll(resp.Body)
	resp.Body.Close()
	return resp.StatusCode, string(bodyBytes), resp
}

// WithSecCtx inject the security context into every request of the group.
func WithSecCtx(sec *session.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		session.SaveSecurityContext(c, sec)
		c.Next()
	}
}
