package flow

import "github.com/BTreeMap/IntakeFlow/internal/models"

// Step ids for social_ads.
const (
	StepAdsBusiness        models.StepID = "business"
	StepAdsGoal            models.StepID = "goal"
	StepAdsAudienceBudget  models.StepID = "audience_budget"
	StepAdsPlatformContent models.StepID = "platform_content"
	StepAdsContentLink     models.StepID = "content_link"
)

// Step ids for social_content.
const (
	StepContentBrand     models.StepID = "brand"
	StepContentGoal      models.StepID = "goal"
	StepContentPlatforms models.StepID = "platforms"
	StepContentVoice     models.StepID = "voice"
)

func socialPlatformOptions() []Choice {
	return options(
		"instagram", "Instagram",
		"facebook", "Facebook",
		"tiktok", "TikTok",
		"linkedin", "LinkedIn",
		"twitter", "X / Twitter",
		"youtube", "YouTube",
		"pinterest", "Pinterest",
	)
}

func socialAdsFlow() FlowConfig {
	return FlowConfig{
		ServiceType: models.ServiceSocialAds,
		InitialStep: StepAdsBusiness,
		Steps: []FlowStep{
			{
				ID:           StepAdsBusiness,
				Stage:        models.StageContext,
				QuestionType: models.QuestionGrouped,
				Question: Question{
					Prompt: "What are we advertising?",
					Items: []SubQuestion{
						{Field: models.FieldBusinessName, Label: "Business name", Input: InputText},
						{Field: models.FieldProductOrService, Label: "Product or service to promote", Input: InputText},
						{Field: models.FieldWebsite, Label: "Website", Input: InputURL},
					},
				},
				RequiredFields: []models.FieldID{models.FieldBusinessName, models.FieldProductOrService},
				Next:           Static(StepAdsGoal),
			},
			{
				ID:           StepAdsGoal,
				Stage:        models.StageContext,
				QuestionType: models.QuestionQuick,
				Question: Question{
					Prompt: "What's the main goal of the campaign?",
					Field:  models.FieldGoal,
					Options: options(
						"awareness", "Brand awareness",
						"traffic", "Website traffic",
						"leads", "Leads",
						"sales", "Sales",
						"app_installs", "App installs",
					),
				},
				RequiredFields: []models.FieldID{models.FieldGoal},
				Next:           Static(StepAdsAudienceBudget),
			},
			{
				ID:           StepAdsAudienceBudget,
				Stage:        models.StageDetails,
				QuestionType: models.QuestionGrouped,
				Question: Question{
					Prompt: "Who should see the ads, and what's the budget?",
					Items: []SubQuestion{
						{Field: models.FieldTargetAudience, Label: "Target audience", Input: InputTextarea},
						{Field: models.FieldMonthlyBudget, Label: "Monthly ad budget (USD)", Input: InputNumber},
					},
				},
				RequiredFields: []models.FieldID{models.FieldTargetAudience, models.FieldMonthlyBudget},
				Next:           Static(StepAdsPlatformContent),
			},
			{
				ID:           StepAdsPlatformContent,
				Stage:        models.StageDetails,
				QuestionType: models.QuestionGrouped,
				Question: Question{
					Prompt: "Where should the ads run, and do you have creative ready?",
					Items: []SubQuestion{
						{Field: models.FieldPlatforms, Label: "Platforms", Input: InputMultiSelect, Options: socialPlatformOptions()},
						{Field: models.FieldHasContent, Label: "I already have ad creative", Input: InputBoolean},
					},
				},
				RequiredFields: []models.FieldID{models.FieldPlatforms, models.FieldHasContent},
				Next: When(
					Predicate{Field: models.FieldHasContent, Op: OpIsTrue},
					StepAdsContentLink,
					models.StepReview,
				),
			},
			{
				ID:           StepAdsContentLink,
				Stage:        models.StageDetails,
				QuestionType: models.QuestionOpen,
				Question: Question{
					Prompt: "Share a link to your existing creative.",
					Field:  models.FieldContentLink,
				},
				RequiredFields: []models.FieldID{models.FieldContentLink},
				Next:           Static(models.StepReview),
			},
			reviewStep("Here's your campaign brief. Ready to launch?"),
		},
	}
}

func socialContentFlow() FlowConfig {
	return FlowConfig{
		ServiceType: models.ServiceSocialContent,
		InitialStep: StepContentBrand,
		Steps: []FlowStep{
			{
				ID:           StepContentBrand,
				Stage:        models.StageContext,
				QuestionType: models.QuestionGrouped,
				Question: Question{
					Prompt: "Tell us about your brand.",
					Items: []SubQuestion{
						{Field: models.FieldBrandName, Label: "Brand name", Input: InputText},
						{Field: models.FieldIndustry, Label: "Industry", Input: InputText},
					},
				},
				RequiredFields: []models.FieldID{models.FieldBrandName, models.FieldIndustry},
				Next:           Static(StepContentGoal),
			},
			{
				ID:           StepContentGoal,
				Stage:        models.StageContext,
				QuestionType: models.QuestionQuick,
				Question: Question{
					Prompt: "What do you want your social presence to achieve?",
					Field:  models.FieldGoal,
					Options: options(
						"brand_awareness", "Brand awareness",
						"engagement", "Engagement",
						"community", "Community building",
						"sales", "Sales",
						"thought_leadership", "Thought leadership",
					),
				},
				RequiredFields: []models.FieldID{models.FieldGoal},
				Next:           Static(StepContentPlatforms),
			},
			{
				ID:           StepContentPlatforms,
				Stage:        models.StageDetails,
				QuestionType: models.QuestionGrouped,
				Question: Question{
					Prompt: "Which platforms should we post on?",
					Items: []SubQuestion{
						{Field: models.FieldPlatforms, Label: "Platforms", Input: InputMultiSelect, Options: socialPlatformOptions()},
					},
				},
				RequiredFields: []models.FieldID{models.FieldPlatforms},
				Next:           Static(StepContentVoice),
			},
			{
				ID:           StepContentVoice,
				Stage:        models.StageDetails,
				QuestionType: models.QuestionGrouped,
				Question: Question{
					Prompt: "How should your brand sound?",
					Items: []SubQuestion{
						{
							Field: models.FieldBrandVoice,
							Label: "Brand voice",
							Input: InputSelect,
							Options: options(
								"professional", "Professional",
								"casual", "Casual",
								"witty", "Witty",
								"inspirational", "Inspirational",
								"educational", "Educational",
							),
						},
						{Field: models.FieldContentPillars, Label: "Topics you want to be known for", Input: InputMultiSelect},
					},
				},
				RequiredFields: []models.FieldID{models.FieldBrandVoice},
				Next:           Static(models.StepReview),
			},
			reviewStep("Here's your content plan brief. Look good?"),
		},
	}
}
