// Package extractor turns free-text transcripts into structured records via
// two prompt contracts against the text-generation service. The model is
// non-deterministic by nature; what this package guarantees is what happens
// with whatever text comes back: best-effort JSON extraction, sentinel
// defaults on failure, never a crash.
package extractor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"call-audit-go/internal/field"
	"call-audit-go/internal/llm"
	"call-audit-go/internal/logger"
)

// KnownServices is the closed list the summary prompt constrains
// Product_Interest to.
var KnownServices = []string{
	"Education Loan Assistance", "GRE Preparation Support", "IELTS Coaching",
	"University Admission Guidance", "Forex Support", "Visa Counseling",
	"Pre-departure Support", "Credit Assessment", "Collateral-Free Loans",
	"Low Interest Rates", "Loan Disbursement Tracking", "Financial Planning",
	"Partnership with Global Universities", "Loan Sanction Letter",
	"Document Collection Support", "Multi-country Loan Options",
}

type Extractor struct {
	gen llm.Generator
	log *logger.Logger
}

func New(gen llm.Generator) *Extractor {
	return &Extractor{gen: gen, log: logger.New()}
}

// ExtractSummary runs the call-summary prompt contract against the
// transcript and parses the result. referenceDate anchors relative dates in
// the transcript; empty means today. On parse failure the returned error is
// a *ParseError carrying the raw model text; there is no retry.
func (e *Extractor) ExtractSummary(ctx context.Context, transcript, referenceDate string) (field.Map, error) {
	if referenceDate == "" {
		referenceDate = time.Now().Format("2006-01-02")
	}
	prompt := buildSummaryPrompt(transcript, referenceDate)

	raw, err := e.gen.Generate(ctx, prompt, llm.Params{MaxTokens: 3000})
	if err != nil {
		return nil, fmt.Errorf("summary generation: %w", err)
	}
	summary, err := decodeObject(raw)
	if err != nil {
		e.log.WithError(err).Warn("summary output not parseable")
		return nil, err
	}
	return summary, nil
}

func buildSummaryPrompt(transcript, referenceDate string) string {
	services := "     - " + strings.Join(KnownServices, "\n     - ")
	return fmt.Sprintf(`Today is %s. Please analyze the following transcript of a Leap Finance sales call related to study abroad education loans.

Your task is to extract structured insights in JSON format for Leap Finance, focusing on the student's academic background, financial eligibility, and interest in education loan services. Follow these rules:

1. For contact numbers:
   - Format them as 10 digits only, without spaces or special characters
   - Pick the most relevant **customer** number only, ignore agent or others

2. For sentiment scores:
   - Ensure Positive + Negative + Neutral scores total exactly 10
   - Match Overall_Customer_Sentiment with the dominant sentiment
   - Statement counts should total correctly

3. For product interests:
   - Match only exact strings from this Leap Finance services list:
%s
   - Return matched services as a comma-separated string or not provided

4. For performance scores:
   - Use whole numbers between 1-10
   - Calculate 'score' as the average of agent scores (rounded)

5. For education & eligibility:
   - Extract desired course (e.g., MS in CS)
   - Extract name of college/university student wants to attend
   - Identify whether student is eligible for the college (Yes/No/Unknown)
   - Capture 10th, 12th, UG academic scores (percentage or GPA)
   - Capture highest qualification (e.g., B.Tech, BBA, B.Com)
   - Capture estimated fee-paying capacity or loan need

If any information is missing or not clearly stated, return `+"`not provided`"+`. Do not assume or guess.

Ensure your final output is valid JSON, with no comments or explanations outside the JSON.

Return output in this exact JSON format:
{
    "Customer": {
        "Name": "Full name or not provided",
        "Contact_Details": "Phone number or not provided",
        "Email": "Valid email or not provided",
        "Address": "Full address or not provided",
        "Verification_Proof": "Mentioned proof ID or not provided",
        "Emergency_Contact_Details": "Phone number or not provided",
        "Pricing_Details": "Fees or loan amount details with currency",
        "Booking_Details": "Appointment or submission dates",
        "Desired_Course": "Name of course (e.g., MS in CS)",
        "Desired_College": "Name of university/college",
        "Eligible_For_College": "Yes/No/Unknown",
        "Education_Scores": {
            "10th": "Percentage or GPA",
            "12th": "Percentage or GPA",
            "UG": "Percentage or GPA or not provided"
        },
        "Highest_Qualification": "Latest degree (e.g., B.Tech)",
        "Fee_Paying_Capacity": "Amount student/family can pay or loan need"
    },
    "Sales_Agent": {
        "Name": "Agent's name or not provided",
        "Company": "Leap Finance",
        "Position": "Agent's title or not provided"
    },
    "Purpose_of_call": "Purpose summary in 1-2 sentences",
    "Summary": [
        "Main point (max 10 words)",
        "Second point (max 10 words)",
        "Third point (max 10 words)",
        "Fourth point (max 10 words)"
    ],
    "User_Satisfaction": "Yes/No/Partially",
    "Next_Steps": "Mentioned next steps (max 2 lines)",
    "follow_up_call": "YYYY-MM-DD HH:MM or not provided",
    "Competitor_Mention": "Other company names or not provided",
    "Customer_Tone": "Neutral/Happy/Angry/Frustrated",
    "Sales_Agent_Score": {
        "Professionalism": 1-10,
        "Product_Knowledge": 1-10,
        "Communication_Skills": 1-10,
        "Problem_Solving": 1-10
    },
    "Product_Interest": "Comma-separated list from the services list or not provided",
    "Call_Quality": "Good or describe issue",
    "Customer_Sentiment_Per_Statement": [
        {
            "Statement": "Exact customer quote",
            "Sentiment": "Positive/Negative/Neutral",
            "Emotion": "Specific emotion"
        }
    ],
    "Sentiment_Scores": {
        "Total_Sentiment_Score": 10,
        "Positive_Sentiment_Score": X,
        "Negative_Sentiment_Score": Y,
        "Neutral_Sentiment_Score": Z
    },
    "Overall_Customer_Sentiment": "Positive/Negative/Neutral",
    "Overall_Customer_Emotion": "Happy/Confused/Frustrated/etc.",
    "Statement_Counts": {
        "Total_Customer_Statements": N,
        "Positive_Statements": X,
        "Negative_Statements": Y,
        "Neutral_Statements": Z
    },
    "score": "Average of agent scores (rounded)",
    "Call_Disconnected": "True/False",
    "Call_Completion_Status": "True/False"
}
Transcript for analysis:
%s
`, referenceDate, services, transcript)
}
