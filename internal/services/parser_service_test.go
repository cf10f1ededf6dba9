package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const sampleParsed = `{
  "basic_info": {"name": "Ada Cook", "email": "ada@example.com", "phone": "+1 555 0100", "linkedin": "https://linkedin.com/in/ada"},
  "analysis": {
    "hard_skills": ["grilling", "pastry"],
    "soft_skills": ["communication"],
    "years_experience": 6,
    "career_level": "Senior",
    "job_fit": {"overall_score": 0.72},
    "last_3_positions": [{"title": "Sous Chef", "company": "Bistro"}],
    "education_level": "Diploma",
    "total_skills": 3,
    "top_keywords": ["cook", "kitchen"]
  },
  "text_preview": "Experienced cook with great communication and teamwork"
}`

func TestParserServiceAdvancedEndpoint(t *testing.T) {
	var gotPath, gotDescription, gotFilename string
	var gotFile []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotDescription = r.FormValue("job_description")
		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		gotFilename = hdr.Filename
		gotFile, _ = io.ReadAll(f)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, sampleParsed)
	}))
	defer srv.Close()

	p := NewParserService(srv.URL+"/", time.Second, zap.NewNop())
	res, err := p.Parse(context.Background(), []byte("%PDF-1.4 body"), "cv.pdf", "We need a cook")
	require.NoError(t, err)

	assert.Equal(t, advancedParsePath, gotPath)
	assert.Equal(t, "We need a cook", gotDescription)
	assert.Equal(t, "cv.pdf", gotFilename)
	assert.Equal(t, "%PDF-1.4 body", string(gotFile))

	assert.Equal(t, "Ada Cook", res.BasicInfo.Name)
	assert.Equal(t, []string{"grilling", "pastry"}, res.Analysis.HardSkills)
	require.NotNil(t, res.Analysis.JobFit)
	require.NotNil(t, res.Analysis.JobFit.OverallScore)
	assert.InDelta(t, 0.72, *res.Analysis.JobFit.OverallScore, 1e-9)
	require.NotNil(t, res.Analysis.TotalSkills)
	assert.InDelta(t, 3, *res.Analysis.TotalSkills, 1e-9)
	assert.JSONEq(t, `["cook","kitchen"]`, string(res.Analysis.TopKeywords))
}

func TestParserServiceBasicEndpointWithoutDescription(t *testing.T) {
	var gotPath string
	var hasDescription bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, hasDescription = r.MultipartForm.Value["job_description"]
		_, _ = io.WriteString(w, `{"basic_info":{},"analysis":{},"text_preview":""}`)
	}))
	defer srv.Close()

	p := NewParserService(srv.URL, time.Second, zap.NewNop())
	_, err := p.Parse(context.Background(), []byte("x"), "cv.pdf", "")
	require.NoError(t, err)

	assert.Equal(t, basicParsePath, gotPath)
	assert.False(t, hasDescription)
}

func TestParserServiceTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	p := NewParserService(srv.URL, 50*time.Millisecond, zap.NewNop())
	start := time.Now()
	_, err := p.Parse(context.Background(), []byte("x"), "cv.pdf", "desc")

	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, KindTimeout, KindOf(err))
	assert.True(t, errors.Is(err, ErrParseTimeout))
}

func TestParserServiceUpstreamFailures(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"server error": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		},
		"bad gateway": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		},
		"malformed json": func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"basic_info":`)
		},
	}
	for name, h := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(h)
			defer srv.Close()

			p := NewParserService(srv.URL, time.Second, zap.NewNop())
			_, err := p.Parse(context.Background(), []byte("x"), "cv.pdf", "")
			require.Error(t, err)
			assert.Equal(t, KindUpstream, KindOf(err))
		})
	}
}

func TestParserServiceUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	p := NewParserService(url, time.Second, zap.NewNop())
	_, err := p.Parse(context.Background(), []byte("x"), "cv.pdf", "")
	require.Error(t, err)
	assert.Equal(t, KindUpstream, KindOf(err))
}

func TestParserServiceRateLimitCountsAgainstTimeout(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_, _ = io.WriteString(w, `{"basic_info":{},"analysis":{},"text_preview":"ok"}`)
	}))
	defer srv.Close()

	// One token per minute: the second call cannot get one inside its 50ms budget.
	p := NewParserService(srv.URL, 50*time.Millisecond, zap.NewNop(), WithRateLimit(1.0/60, 1))

	_, err := p.Parse(context.Background(), []byte("x"), "cv.pdf", "")
	require.NoError(t, err)

	_, err = p.Parse(context.Background(), []byte("x"), "cv.pdf", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrParseTimeout)
	assert.Equal(t, KindTimeout, KindOf(err))
	assert.Equal(t, 1, calls)
}

func TestParserServiceAcceptsFractionalTotalSkills(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"basic_info":{"name":"Ada"},"analysis":{"total_skills":12.0},"text_preview":"cook"}`)
	}))
	defer srv.Close()

	p := NewParserService(srv.URL, time.Second, zap.NewNop())
	res, err := p.Parse(context.Background(), []byte("x"), "cv.pdf", "")
	require.NoError(t, err)
	require.NotNil(t, res.Analysis.TotalSkills)
	assert.InDelta(t, 12, *res.Analysis.TotalSkills, 1e-9)
	assert.Equal(t, "Ada", res.BasicInfo.Name)
}
