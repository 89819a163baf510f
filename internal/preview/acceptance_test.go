package preview_test

import (
	"encoding/json"
	"fmt"
	"net"
	"strings"

	"github.com/alicebob/miniredis/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
	"go.uber.org/zap"

	"github.com/edgecomet/htmlcut/internal/common/config"
	"github.com/edgecomet/htmlcut/internal/common/redis"
	"github.com/edgecomet/htmlcut/internal/common/requestid"
	"github.com/edgecomet/htmlcut/internal/preview"
	"github.com/edgecomet/htmlcut/internal/preview/metrics"
	"github.com/edgecomet/htmlcut/pkg/types"
)

type apiResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

var _ = Describe("Preview service over HTTP", func() {
	var (
		mr          *miniredis.Miniredis
		ln          *fasthttputil.InmemoryListener
		server      *fasthttp.Server
		client      *fasthttp.Client
		redisClient *redis.Client
	)

	post := func(path, body string, headers ...string) (*fasthttp.Response, apiResponse) {
		req := fasthttp.AcquireRequest()
		defer fasthttp.ReleaseRequest(req)
		resp := &fasthttp.Response{}

		req.SetRequestURI("http://preview" + path)
		req.Header.SetMethod(fasthttp.MethodPost)
		req.Header.SetContentType("application/json")
		for i := 0; i+1 < len(headers); i += 2 {
			req.Header.Set(headers[i], headers[i+1])
		}
		req.SetBodyString(body)

		Expect(client.Do(req, resp)).To(Succeed())

		var env apiResponse
		Expect(json.Unmarshal(resp.Body(), &env)).To(Succeed())
		return resp, env
	}

	BeforeEach(func() {
		mr = miniredis.NewMiniRedis()
		Expect(mr.Start()).To(Succeed())

		cfg, err := config.ParseServiceConfig([]byte(fmt.Sprintf(`
redis:
  addr: %q
cache:
  enabled: true
  ttl: 10m
  compression: snappy
  min_size: 1
truncate:
  extra_denylist: [aside]
`, mr.Addr())))
		Expect(err).NotTo(HaveOccurred())

		logger := zap.NewNop()
		m := metrics.NewPrometheusMetrics("acceptance", logger)

		redisClient, err = redis.NewClient(&cfg.Redis, logger)
		Expect(err).NotTo(HaveOccurred())

		svc, err := preview.NewService(cfg, preview.NewResultCache(redisClient, cfg.Cache, m, logger), m, logger)
		Expect(err).NotTo(HaveOccurred())

		ln = fasthttputil.NewInmemoryListener()
		server = &fasthttp.Server{
			Handler:            svc.Handler(),
			MaxRequestBodySize: cfg.Server.MaxBodySize,
		}
		go func() {
			defer GinkgoRecover()
			_ = server.Serve(ln)
		}()

		client = &fasthttp.Client{
			Dial: func(addr string) (net.Conn, error) {
				return ln.Dial()
			},
		}
	})

	AfterEach(func() {
		Expect(server.Shutdown()).To(Succeed())
		_ = redisClient.Close()
		mr.Close()
	})

	It("cuts markup and places the marker inside the last paragraph", func() {
		resp, env := post("/cut", `{"html":"<p>First paragraph here.</p><p>Second paragraph text.</p>","length":20}`)
		Expect(resp.StatusCode()).To(Equal(fasthttp.StatusOK))
		Expect(env.Success).To(BeTrue())

		var result types.CutResult
		Expect(json.Unmarshal(env.Data, &result)).To(Succeed())
		Expect(result.HTML).To(Equal("<p>First paragraph here…</p>"))
		Expect(result.Truncated).To(BeTrue())
		Expect(result.FinalLength).To(BeNumerically("<=", 20))
	})

	It("applies the configured extra denylist", func() {
		_, env := post("/cut", `{"html":"<p>Body</p><aside>Related links</aside>","length":100}`)

		var result types.CutResult
		Expect(json.Unmarshal(env.Data, &result)).To(Succeed())
		Expect(result.HTML).To(Equal("<p>Body…</p>"))
	})

	It("serves repeated requests from the cache", func() {
		body := `{"html":"<div>Testing cutting function</div>","length":10}`
		post("/cut", body)
		Expect(mr.Keys()).To(HaveLen(1))

		_, env := post("/cut", body)
		var result types.CutResult
		Expect(json.Unmarshal(env.Data, &result)).To(Succeed())
		Expect(result.Cached).To(BeTrue())
		Expect(result.HTML).To(Equal("<div>Testing</div>…"))
	})

	It("echoes a sanitised request id", func() {
		resp, _ := post("/cut", `{"html":"hello"}`, requestid.Header, "abc 123")
		Expect(string(resp.Header.Peek(requestid.Header))).To(MatchRegexp(`^[a-f0-9]{5}-abc-123$`))
	})

	It("reports structural errors with 422", func() {
		deep := strings.Repeat("<span>", 600) + "text" + strings.Repeat("</span>", 600)
		resp, env := post("/cut", fmt.Sprintf(`{"html":%q,"length":2}`, deep))
		Expect(resp.StatusCode()).To(Equal(fasthttp.StatusUnprocessableEntity))
		Expect(env.Success).To(BeFalse())
	})

	It("keeps batch results in request order", func() {
		_, env := post("/cut/batch", `{"items":[{"html":"one two three","length":7},{"html":"<p>a</p>","length":5}]}`)

		var batch types.CutBatchResponse
		Expect(json.Unmarshal(env.Data, &batch)).To(Succeed())
		Expect(batch.Items).To(HaveLen(2))
		Expect(batch.Items[0].Result.HTML).To(Equal("one two…"))
		Expect(batch.Items[1].Result.HTML).To(Equal("<p>a</p>"))
	})

	It("keeps serving when Redis goes away", func() {
		mr.SetError("gone")
		resp, env := post("/cut", `{"html":"Hello world, this is long","length":12}`)
		Expect(resp.StatusCode()).To(Equal(fasthttp.StatusOK))

		var result types.CutResult
		Expect(json.Unmarshal(env.Data, &result)).To(Succeed())
		Expect(result.HTML).To(Equal("Hello world…"))
	})
})
