// Copyright Daybreak Media and each contributor to the audience sync service.
// SPDX-License-Identifier: MIT

package mailchimp

// audienceList is one Mailchimp audience.
type audienceList struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Stats struct {
		MemberCount int `json:"member_count"`
	} `json:"stats"`
}

type listsResponse struct {
	Lists      []audienceList `json:"lists"`
	TotalItems int            `json:"total_items"`
}

// member is a Mailchimp audience member.
type member struct {
	ID           string            `json:"id"`
	EmailAddress string            `json:"email_address"`
	FullName     string            `json:"full_name"`
	Status       string            `json:"status"`
	ListID       string            `json:"list_id"`
	MergeFields  map[string]string `json:"merge_fields,omitempty"`
}

type memberUpsertRequest struct {
	EmailAddress string            `json:"email_address"`
	StatusIfNew  string            `json:"status_if_new"`
	Status       string            `json:"status,omitempty"`
	MergeFields  map[string]string `json:"merge_fields,omitempty"`
}

type searchMembersResponse struct {
	ExactMatches struct {
		Members []member `json:"members"`
	} `json:"exact_matches"`
}

// segment is a Mailchimp static segment, the mechanism behind member tags.
type segment struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	ListID string `json:"list_id"`
}

type segmentsResponse struct {
	Segments   []segment `json:"segments"`
	TotalItems int       `json:"total_items"`
}

type segmentCreateRequest struct {
	Name          string   `json:"name"`
	StaticSegment []string `json:"static_segment"`
}

type segmentMemberRequest struct {
	EmailAddress string `json:"email_address"`
}

type memberTagsResponse struct {
	Tags []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"tags"`
}

type campaignRecipients struct {
	ListID string `json:"list_id"`
}

type campaignSettings struct {
	SubjectLine string `json:"subject_line"`
	Title       string `json:"title"`
}

type campaignCreateRequest struct {
	Type       string             `json:"type"`
	Recipients campaignRecipients `json:"recipients"`
	Settings   campaignSettings   `json:"settings"`
}

type campaign struct {
	ID string `json:"id"`
}

type reportsResponse struct {
	Reports []struct {
		EmailsSent int `json:"emails_sent"`
		Opens      struct {
			OpensTotal int `json:"opens_total"`
		} `json:"opens"`
		Clicks struct {
			ClicksTotal int `json:"clicks_total"`
		} `json:"clicks"`
	} `json:"reports"`
}
