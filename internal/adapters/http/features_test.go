package http

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/cucumber/godog"
	"github.com/gin-gonic/gin"
	"github.com/tidwall/gjson"
)

// apiFeature holds state shared across step definitions within a scenario.
type apiFeature struct {
	engine  *gin.Engine
	cleanup func()

	response *httptest.ResponseRecorder

	// saved maps a name given in a step to the id of the created resource.
	saved map[string]string
}

func (f *apiFeature) reset() error {
	if f.cleanup != nil {
		f.cleanup()
	}

	engine, cleanup, err := buildTestEngine(5 * time.Second)
	if err != nil {
		return err
	}

	f.engine = engine
	f.cleanup = cleanup
	f.response = nil
	f.saved = make(map[string]string)

	return nil
}

// expand substitutes {name} with the id saved under name.
func (f *apiFeature) expand(s string) string {
	for name, id := range f.saved {
		s = strings.ReplaceAll(s, "{"+name+"}", id)
	}

	return s
}

func (f *apiFeature) send(method, path, contentType, body string) {
	req := httptest.NewRequest(method, f.expand(path), strings.NewReader(f.expand(body)))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	f.response = httptest.NewRecorder()
	f.engine.ServeHTTP(f.response, req)
}

func (f *apiFeature) iSend(method, path string) error {
	f.send(method, path, "", "")
	return nil
}

func (f *apiFeature) iSendJSON(method, path string, body *godog.DocString) error {
	f.send(method, path, "application/json", body.Content)
	return nil
}

func (f *apiFeature) iSendText(method, path, contentType, text string) error {
	f.send(method, path, contentType, text)
	return nil
}

func (f *apiFeature) aSource(name string) error {
	f.send(http.MethodPost, "/sources", "application/json", fmt.Sprintf(`{"name":%q}`, name))
	return f.saveAs(name)
}

func (f *apiFeature) aQuote(name, text string) error {
	f.send(http.MethodPost, "/quotes", "application/json", fmt.Sprintf(`{"text":%q}`, text))
	return f.saveAs(name)
}

func (f *apiFeature) aQuoteBy(name, text, source string) error {
	f.send(http.MethodPost, "/quotes", "application/json",
		fmt.Sprintf(`{"text":%q,"source":{"id":%q}}`, text, f.saved[source]))
	return f.saveAs(name)
}

func (f *apiFeature) saveAs(name string) error {
	if f.response.Code != http.StatusCreated {
		return fmt.Errorf("creating %q: status %d: %s", name, f.response.Code, f.response.Body.String())
	}

	f.saved[name] = gjson.Get(f.response.Body.String(), "id").String()

	return nil
}

func (f *apiFeature) theResponseStatusShouldBe(expected int) error {
	if f.response == nil {
		return fmt.Errorf("no response received")
	}

	if f.response.Code != expected {
		return fmt.Errorf("expected status %d, got %d. Body: %s", expected, f.response.Code, f.response.Body.String())
	}

	return nil
}

func (f *apiFeature) theJSONFieldShouldBe(path, expected string) error {
	got := gjson.Get(f.response.Body.String(), path)
	if !got.Exists() {
		return fmt.Errorf("field %q missing. Body: %s", path, f.response.Body.String())
	}

	if got.String() != f.expand(expected) {
		return fmt.Errorf("field %q: expected %q, got %q", path, f.expand(expected), got.String())
	}

	return nil
}

func (f *apiFeature) theJSONFieldShouldBeNull(path string) error {
	got := gjson.Get(f.response.Body.String(), path)
	if got.Type != gjson.Null {
		return fmt.Errorf("field %q: expected null, got %s", path, got.Raw)
	}

	return nil
}

func (f *apiFeature) theResponseShouldHaveItems(n int) error {
	got := gjson.Get(f.response.Body.String(), "#").Int()
	if got != int64(n) {
		return fmt.Errorf("expected %d items, got %d. Body: %s", n, got, f.response.Body.String())
	}

	return nil
}

func (f *apiFeature) theResponseBodyShouldBe(expected string) error {
	if got := f.response.Body.String(); got != expected {
		return fmt.Errorf("expected body %q, got %q", expected, got)
	}

	return nil
}

func (f *apiFeature) theErrorCodeShouldBe(code string) error {
	return f.theJSONFieldShouldBe("error.code", code)
}

// InitializeScenario registers step definitions for each scenario.
func InitializeScenario(ctx *godog.ScenarioContext) {
	f := &apiFeature{}

	ctx.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		return ctx, f.reset()
	})

	ctx.After(func(ctx context.Context, _ *godog.Scenario, err error) (context.Context, error) {
		if f.cleanup != nil {
			f.cleanup()
			f.cleanup = nil
		}
		return ctx, err
	})

	ctx.Step(`^a source "([^"]*)"$`, f.aSource)
	ctx.Step(`^a quote "([^"]*)" with text "([^"]*)"$`, f.aQuote)
	ctx.Step(`^a quote "([^"]*)" with text "([^"]*)" by "([^"]*)"$`, f.aQuoteBy)
	ctx.Step(`^I (GET|DELETE|PUT|POST) "([^"]*)"$`, f.iSend)
	ctx.Step(`^I (POST|PUT) "([^"]*)" with JSON:$`, f.iSendJSON)
	ctx.Step(`^I (PUT) "([^"]*)" with "([^"]*)" body "([^"]*)"$`, f.iSendText)
	ctx.Step(`^the response status should be (\d+)$`, f.theResponseStatusShouldBe)
	ctx.Step(`^the JSON field "([^"]*)" should be "([^"]*)"$`, f.theJSONFieldShouldBe)
	ctx.Step(`^the JSON field "([^"]*)" should be null$`, f.theJSONFieldShouldBeNull)
	ctx.Step(`^the response should have (\d+) items?$`, f.theResponseShouldHaveItems)
	ctx.Step(`^the response body should be "([^"]*)"$`, f.theResponseBodyShouldBe)
	ctx.Step(`^the error code should be "([^"]*)"$`, f.theErrorCodeShouldBe)
}

// TestFeatures runs the GoDog BDD suite in-process against the full router.
func TestFeatures(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping feature suite in short mode")
	}

	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
			Tags:     os.Getenv("GODOG_TAGS"),
			Strict:   true,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
