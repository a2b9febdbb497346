package sitecrawl_test

import (
	"encoding/json"
	"testing"

	"github.com/fwojciec/sitecrawl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_MarshalJSONAddsType(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(sitecrawl.LinkRecord{
		URL:          "https://acme.com/about",
		AnchorText:   "About",
		FollowPolicy: sitecrawl.Follow,
		Category:     sitecrawl.Internal,
	})
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"type": "link",
		"url": "https://acme.com/about",
		"anchor_text": "About",
		"link_type": "follow",
		"link_category": "internal",
		"target": ""
	}`, string(data))
}

func TestResult_MarshalJSONTagsEveryRecord(t *testing.T) {
	t.Parallel()

	result := &sitecrawl.Result{
		Mode: sitecrawl.ModeLinks,
		Records: []sitecrawl.Record{
			sitecrawl.PageInfoRecord{URL: "https://acme.com", StatusCode: 200},
			sitecrawl.SummaryRecord{},
			sitecrawl.ErrorRecord{URL: "https://acme.com/x", ErrorMessage: "boom"},
		},
	}

	data, err := json.Marshal(result)
	require.NoError(t, err)

	var decoded struct {
		Data []struct {
			Type string `json:"type"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded.Data, 3)
	assert.Equal(t, "page_info", decoded.Data[0].Type)
	assert.Equal(t, "summary", decoded.Data[1].Type)
	assert.Equal(t, "error", decoded.Data[2].Type)
}

func TestUnmarshalRecord(t *testing.T) {
	t.Parallel()

	t.Run("restores the concrete record type", func(t *testing.T) {
		t.Parallel()

		in := sitecrawl.ContactRecord{
			URL:           "https://acme.com",
			SourcePageURL: "https://acme.com/contact",
			Emails:        []string{"sales@acme.co"},
			PhoneNumbers:  []string{"+14155550100"},
			Status:        sitecrawl.ContactFound,
		}
		data, err := json.Marshal(in)
		require.NoError(t, err)

		rec, err := sitecrawl.UnmarshalRecord(data)
		require.NoError(t, err)
		assert.Equal(t, in, rec)
	})

	t.Run("rejects unknown types", func(t *testing.T) {
		t.Parallel()

		_, err := sitecrawl.UnmarshalRecord([]byte(`{"type":"bogus"}`))
		assert.Equal(t, sitecrawl.EPARSE, sitecrawl.ErrorCode(err))
	})
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	links := []sitecrawl.LinkRecord{
		{Category: sitecrawl.Internal, FollowPolicy: sitecrawl.Follow},
		{Category: sitecrawl.Internal, FollowPolicy: sitecrawl.NoFollow},
		{Category: sitecrawl.External, FollowPolicy: sitecrawl.NoFollow},
	}

	assert.Equal(t, sitecrawl.SummaryRecord{
		TotalLinks:    3,
		InternalLinks: 2,
		ExternalLinks: 1,
		FollowLinks:   1,
		NofollowLinks: 2,
	}, sitecrawl.Summarize(links))
}
