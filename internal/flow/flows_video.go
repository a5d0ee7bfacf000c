package flow

import "github.com/BTreeMap/IntakeFlow/internal/models"

// Step ids for launch_video.
const (
	StepLaunchProduct          models.StepID = "product"
	StepLaunchPlatforms        models.StepID = "platforms"
	StepLaunchStoryline        models.StepID = "storyline"
	StepLaunchStorylineDetails models.StepID = "storyline_details"
	StepLaunchStyle            models.StepID = "style"
)

// Step ids for video_edit.
const (
	StepEditVideoType   models.StepID = "video_type"
	StepEditFootage     models.StepID = "footage"
	StepEditPlatforms   models.StepID = "platforms"
	StepEditPreferences models.StepID = "edit_preferences"
)

func videoPlatformOptions() []Choice {
	return options(
		"tiktok", "TikTok",
		"instagram_reels", "Instagram Reels",
		"youtube_shorts", "YouTube Shorts",
		"youtube", "YouTube",
		"linkedin", "LinkedIn",
		"twitter", "X / Twitter",
		"website", "Website / landing page",
	)
}

func deadlineOptions() []Choice {
	return options(
		"asap", "As soon as possible",
		"1_week", "Within a week",
		"2_weeks", "Within two weeks",
		"1_month", "Within a month",
		"flexible", "Flexible",
	)
}

func launchVideoFlow() FlowConfig {
	return FlowConfig{
		ServiceType: models.ServiceLaunchVideo,
		InitialStep: StepLaunchProduct,
		Steps: []FlowStep{
			{
				ID:           StepLaunchProduct,
				Stage:        models.StageContext,
				QuestionType: models.QuestionGrouped,
				Question: Question{
					Prompt: "Tell us about the product you're launching.",
					Items: []SubQuestion{
						{Field: models.FieldProductName, Label: "Product name", Input: InputText},
						{Field: models.FieldProductDescription, Label: "What does it do, in a sentence or two?", Input: InputTextarea},
						{Field: models.FieldTargetAudience, Label: "Who is it for?", Input: InputText},
					},
				},
				RequiredFields: []models.FieldID{models.FieldProductName, models.FieldProductDescription},
				Next:           Static(StepLaunchPlatforms),
			},
			{
				ID:           StepLaunchPlatforms,
				Stage:        models.StageContext,
				QuestionType: models.QuestionGrouped,
				Question: Question{
					Prompt: "Where will the video be published?",
					Items: []SubQuestion{
						{
							Field:          models.FieldPlatforms,
							Label:          "Platforms",
							Input:          InputMultiSelect,
							Options:        videoPlatformOptions(),
							Recommendation: "Short-form platforms work best with 15-30 second cuts.",
						},
					},
				},
				RequiredFields: []models.FieldID{models.FieldPlatforms},
				Next:           Static(StepLaunchStoryline),
			},
			{
				ID:           StepLaunchStoryline,
				Stage:        models.StageDetails,
				QuestionType: models.QuestionQuick,
				Question: Question{
					Prompt: "Do you already have a storyline in mind?",
					Field:  models.FieldStorylinePreference,
					Options: options(
						models.StorylineHaveIdeas, "I have ideas",
						models.StorylineCreateForMe, "Create one for me",
					),
				},
				// Unanswered means "create one for me"; the default is filled in later.
				Next: When(
					Predicate{Field: models.FieldStorylinePreference, Op: OpEquals, Value: models.StorylineHaveIdeas},
					StepLaunchStorylineDetails,
					StepLaunchStyle,
				),
			},
			{
				ID:           StepLaunchStorylineDetails,
				Stage:        models.StageDetails,
				QuestionType: models.QuestionOpen,
				Question: Question{
					Prompt: "Walk us through your storyline ideas.",
					Field:  models.FieldStorylineNotes,
				},
				RequiredFields: []models.FieldID{models.FieldStorylineNotes},
				Next:           Static(StepLaunchStyle),
			},
			{
				ID:           StepLaunchStyle,
				Stage:        models.StageDetails,
				QuestionType: models.QuestionGrouped,
				Question: Question{
					Prompt: "A few details on look and timing.",
					Items: []SubQuestion{
						{
							Field: models.FieldTone,
							Label: "Tone",
							Input: InputSelect,
							Options: options(
								"energetic", "Energetic",
								"premium", "Premium / cinematic",
								"playful", "Playful",
								"minimal", "Clean and minimal",
								"corporate", "Corporate",
							),
						},
						{Field: models.FieldReferences, Label: "Reference videos you like", Input: InputURL},
						{Field: models.FieldDeadline, Label: "Deadline", Input: InputSelect, Options: deadlineOptions()},
					},
				},
				RequiredFields: []models.FieldID{models.FieldTone},
				Next:           Static(models.StepReview),
			},
			reviewStep("Here's the brief for your launch video. Does everything look right?"),
		},
	}
}

func videoEditFlow() FlowConfig {
	return FlowConfig{
		ServiceType: models.ServiceVideoEdit,
		InitialStep: StepEditVideoType,
		Steps: []FlowStep{
			{
				ID:           StepEditVideoType,
				Stage:        models.StageContext,
				QuestionType: models.QuestionQuick,
				Question: Question{
					Prompt: "What kind of video are we editing?",
					Field:  models.FieldVideoType,
					Options: options(
						"talking_head", "Talking head",
						"product_demo", "Product demo",
						"event_recap", "Event recap",
						"tutorial", "Tutorial",
						"vlog", "Vlog",
						"ad", "Ad",
					),
				},
				RequiredFields: []models.FieldID{models.FieldVideoType},
				Next:           Static(StepEditFootage),
			},
			{
				ID:           StepEditFootage,
				Stage:        models.StageContext,
				QuestionType: models.QuestionGrouped,
				Question: Question{
					Prompt: "Share your raw footage.",
					Items: []SubQuestion{
						{Field: models.FieldFootageLink, Label: "Link to the footage (Drive, Dropbox, ...)", Input: InputURL},
						{Field: models.FieldFootageMinutes, Label: "Roughly how many minutes of raw footage?", Input: InputNumber},
					},
				},
				RequiredFields: []models.FieldID{models.FieldFootageLink},
				Next:           Static(StepEditPlatforms),
			},
			{
				ID:           StepEditPlatforms,
				Stage:        models.StageDetails,
				QuestionType: models.QuestionGrouped,
				Question: Question{
					Prompt: "Where will the edit be published?",
					Items: []SubQuestion{
						{Field: models.FieldPlatforms, Label: "Platforms", Input: InputMultiSelect, Options: videoPlatformOptions()},
					},
				},
				RequiredFields: []models.FieldID{models.FieldPlatforms},
				Next:           Static(StepEditPreferences),
			},
			{
				ID:           StepEditPreferences,
				Stage:        models.StageDetails,
				QuestionType: models.QuestionGrouped,
				Question: Question{
					Prompt: "Any preferences for the edit? Skip anything you want us to decide.",
					Items: []SubQuestion{
						{
							Field: models.FieldStyle,
							Label: "Editing style",
							Input: InputSelect,
							Options: options(
								"fast_paced", "Fast-paced",
								"clean", "Clean and simple",
								"cinematic", "Cinematic",
								"documentary", "Documentary",
							),
							Recommendation: "We'll suggest a style based on your video type if you skip this.",
						},
						{Field: models.FieldMusic, Label: "Music direction", Input: InputText},
						{Field: models.FieldSubtitles, Label: "Subtitles", Input: InputBoolean, Recommendation: "Most social viewers watch muted, so we add subtitles by default."},
						{Field: models.FieldTextOverlays, Label: "Text overlays", Input: InputBoolean},
						{Field: models.FieldNotes, Label: "Anything else?", Input: InputTextarea},
					},
				},
				Next: Static(models.StepReview),
			},
			reviewStep("Here's your edit brief. Ready to submit?"),
		},
	}
}
