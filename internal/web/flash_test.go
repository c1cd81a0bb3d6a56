package web

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestFlashSurvivesOneRedirect(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/set", func(c *gin.Context) {
		addFlash(c, categorySuccess, "saved")
		addFlash(c, categoryDanger, "but also this")
		c.Redirect(http.StatusFound, "/show")
	})
	r.GET("/show", func(c *gin.Context) {
		c.JSON(http.StatusOK, popFlashes(c))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/set", nil))
	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("no flash cookie set")
	}
	flash := cookies[len(cookies)-1]

	req := httptest.NewRequest(http.MethodGet, "/show", nil)
	req.AddCookie(flash)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	want := `[{"c":"success","m":"saved"},{"c":"danger","m":"but also this"}]`
	if w.Body.String() != want {
		t.Fatalf("body = %s, want %s", w.Body.String(), want)
	}
	cleared := false
	for _, ck := range w.Result().Cookies() {
		if ck.Name == flashCookieName && ck.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Fatal("flash cookie not cleared after read")
	}
}

func TestReadFlashesIgnoresGarbage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.AddCookie(&http.Cookie{Name: flashCookieName, Value: "%%%not-base64"})
	if got := readFlashes(c); got != nil {
		t.Fatalf("got %+v", got)
	}
}

func TestTemplatesParse(t *testing.T) {
	tmpl := Templates()
	for _, name := range []string{"index.html", "login.html", "register.html"} {
		if tmpl.Lookup(name) == nil {
			t.Errorf("template %s missing", name)
		}
	}
}
