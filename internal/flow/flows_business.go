package flow

import "github.com/BTreeMap/IntakeFlow/internal/models"

// Step ids for pitch_deck.
const (
	StepDeckCompany  models.StepID = "company"
	StepDeckPurpose  models.StepID = "deck_purpose"
	StepDeckExisting models.StepID = "existing_deck"
	StepDeckUpload   models.StepID = "deck_upload"
	StepDeckContent  models.StepID = "content"
)

// Step ids for brand_package.
const (
	StepBrandBusiness       models.StepID = "business"
	StepBrandLogoCheck      models.StepID = "logo_check"
	StepBrandLogoUpload     models.StepID = "logo_upload"
	StepBrandPackageOptions models.StepID = "package_options"
)

func yesNoOptions() []Choice {
	return options("true", "Yes", "false", "No")
}

func pitchDeckFlow() FlowConfig {
	return FlowConfig{
		ServiceType: models.ServicePitchDeck,
		InitialStep: StepDeckCompany,
		Steps: []FlowStep{
			{
				ID:           StepDeckCompany,
				Stage:        models.StageContext,
				QuestionType: models.QuestionGrouped,
				Question: Question{
					Prompt: "Let's start with your company.",
					Items: []SubQuestion{
						{Field: models.FieldCompanyName, Label: "Company name", Input: InputText},
						{Field: models.FieldOneLiner, Label: "Your one-line pitch", Input: InputText},
						{
							Field: models.FieldCompanyStage,
							Label: "Stage",
							Input: InputSelect,
							Options: options(
								"idea", "Idea",
								"pre_seed", "Pre-seed",
								"seed", "Seed",
								"series_a", "Series A",
								"growth", "Growth",
							),
						},
					},
				},
				RequiredFields: []models.FieldID{models.FieldCompanyName, models.FieldOneLiner},
				Next:           Static(StepDeckPurpose),
			},
			{
				ID:           StepDeckPurpose,
				Stage:        models.StageContext,
				QuestionType: models.QuestionQuick,
				Question: Question{
					Prompt: "What is the deck for?",
					Field:  models.FieldPurpose,
					Options: options(
						"fundraising", "Fundraising",
						"sales", "Sales",
						"partnership", "Partnerships",
						"internal", "Internal / board update",
					),
				},
				RequiredFields: []models.FieldID{models.FieldPurpose},
				Next:           Static(StepDeckExisting),
			},
			{
				ID:           StepDeckExisting,
				Stage:        models.StageDetails,
				QuestionType: models.QuestionQuick,
				Question: Question{
					Prompt:  "Do you have an existing deck we should start from?",
					Field:   models.FieldHasExistingDeck,
					Options: yesNoOptions(),
				},
				RequiredFields: []models.FieldID{models.FieldHasExistingDeck},
				Next: When(
					Predicate{Field: models.FieldHasExistingDeck, Op: OpIsTrue},
					StepDeckUpload,
					StepDeckContent,
				),
			},
			{
				ID:           StepDeckUpload,
				Stage:        models.StageDetails,
				QuestionType: models.QuestionOpen,
				Question: Question{
					Prompt: "Share a link to your current deck.",
					Field:  models.FieldExistingDeckLink,
				},
				RequiredFields: []models.FieldID{models.FieldExistingDeckLink},
				Next:           Static(StepDeckContent),
			},
			{
				ID:           StepDeckContent,
				Stage:        models.StageDetails,
				QuestionType: models.QuestionGrouped,
				Question: Question{
					Prompt: "What should the deck say?",
					Items: []SubQuestion{
						{Field: models.FieldKeyMetrics, Label: "Key metrics and traction", Input: InputTextarea},
						{Field: models.FieldFundingAsk, Label: "Funding ask (if raising)", Input: InputText},
						{Field: models.FieldDeadline, Label: "Deadline", Input: InputSelect, Options: deadlineOptions()},
					},
				},
				RequiredFields: []models.FieldID{models.FieldKeyMetrics},
				Next:           Static(models.StepReview),
			},
			reviewStep("Here's the outline of your pitch deck brief. Shall we lock it in?"),
		},
	}
}

func brandPackageFlow() FlowConfig {
	return FlowConfig{
		ServiceType: models.ServiceBrandPackage,
		InitialStep: StepBrandBusiness,
		Steps: []FlowStep{
			{
				ID:           StepBrandBusiness,
				Stage:        models.StageContext,
				QuestionType: models.QuestionGrouped,
				Question: Question{
					Prompt: "Tell us about your business.",
					Items: []SubQuestion{
						{Field: models.FieldBusinessName, Label: "Business name", Input: InputText},
						{Field: models.FieldIndustry, Label: "Industry", Input: InputText},
						{Field: models.FieldTargetAudience, Label: "Who are your customers?", Input: InputText},
					},
				},
				RequiredFields: []models.FieldID{models.FieldBusinessName, models.FieldIndustry},
				Next:           Static(StepBrandLogoCheck),
			},
			{
				ID:           StepBrandLogoCheck,
				Stage:        models.StageContext,
				QuestionType: models.QuestionQuick,
				Question: Question{
					Prompt:  "Do you already have a logo?",
					Field:   models.FieldHasLogo,
					Options: yesNoOptions(),
				},
				RequiredFields: []models.FieldID{models.FieldHasLogo},
				Next: When(
					Predicate{Field: models.FieldHasLogo, Op: OpIsTrue},
					StepBrandLogoUpload,
					StepBrandPackageOptions,
				),
			},
			{
				ID:           StepBrandLogoUpload,
				Stage:        models.StageDetails,
				QuestionType: models.QuestionOpen,
				Question: Question{
					Prompt: "Upload or link your current logo.",
					Field:  models.FieldLogoLink,
				},
				RequiredFields: []models.FieldID{models.FieldLogoLink},
				Next:           Static(StepBrandPackageOptions),
			},
			{
				ID:           StepBrandPackageOptions,
				Stage:        models.StageDetails,
				QuestionType: models.QuestionGrouped,
				Question: Question{
					Prompt: "What should the package include?",
					Items: []SubQuestion{
						{
							Field: models.FieldDeliverables,
							Label: "Deliverables",
							Input: InputMultiSelect,
							Options: options(
								"logo", "Logo",
								"color_palette", "Color palette",
								"typography", "Typography",
								"business_cards", "Business cards",
								"brand_guidelines", "Brand guidelines",
								"social_templates", "Social media templates",
							),
						},
						{
							Field: models.FieldBrandPersonality,
							Label: "Brand personality",
							Input: InputSelect,
							Options: options(
								"bold", "Bold",
								"friendly", "Friendly",
								"luxurious", "Luxurious",
								"trustworthy", "Trustworthy",
								"playful", "Playful",
							),
						},
					},
				},
				RequiredFields: []models.FieldID{models.FieldDeliverables},
				Next:           Static(models.StepReview),
			},
			reviewStep("Here's your brand package brief. Does this capture it?"),
		},
	}
}
