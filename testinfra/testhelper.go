package testinfra

import (
	"io/ioutil"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
)

// ExecuteRequest serves req on engine and returns status, body and the raw recorder.
func ExecuteRequest(req *http.Request, engine *gin.Engine) (int, string, *http.Response) {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	resp := w.Result()
	defer resp.Body.Close()
	body, _ := ioutil.ReadAll(resp.Body)
	return resp.StatusCode, string(body), resp
}
