package models

// Field identifiers. Shared names are reused across shapes where the meaning is the same.
const (
	FieldPlatforms         FieldID = "platforms"
	FieldGoal              FieldID = "goal"
	FieldBusinessName      FieldID = "businessName"
	FieldIndustry          FieldID = "industry"
	FieldTargetAudience    FieldID = "targetAudience"
	FieldNotes             FieldID = "notes"
	FieldDeadline          FieldID = "deadline"
	FieldRecommendedLength FieldID = "recommendedLength"

	// launch_video
	FieldProductName         FieldID = "productName"
	FieldProductDescription  FieldID = "productDescription"
	FieldStorylinePreference FieldID = "storylinePreference"
	FieldStorylineNotes      FieldID = "storylineNotes"
	FieldTone                FieldID = "tone"
	FieldReferences          FieldID = "references"

	// video_edit
	FieldVideoType        FieldID = "videoType"
	FieldFootageLink      FieldID = "footageLink"
	FieldFootageMinutes   FieldID = "footageMinutes"
	FieldStyle            FieldID = "style"
	FieldMusic            FieldID = "music"
	FieldSubtitles        FieldID = "subtitles"
	FieldTextOverlays     FieldID = "textOverlays"
	FieldRecommendedStyle FieldID = "recommendedStyle"

	// pitch_deck
	FieldCompanyName           FieldID = "companyName"
	FieldOneLiner              FieldID = "oneLiner"
	FieldCompanyStage          FieldID = "companyStage"
	FieldPurpose               FieldID = "purpose"
	FieldHasExistingDeck       FieldID = "hasExistingDeck"
	FieldExistingDeckLink      FieldID = "existingDeckLink"
	FieldKeyMetrics            FieldID = "keyMetrics"
	FieldFundingAsk            FieldID = "fundingAsk"
	FieldRecommendedSlideCount FieldID = "recommendedSlideCount"

	// brand_package
	FieldHasLogo            FieldID = "hasLogo"
	FieldLogoLink           FieldID = "logoLink"
	FieldDeliverables       FieldID = "deliverables"
	FieldBrandPersonality   FieldID = "brandPersonality"
	FieldRecommendedPackage FieldID = "recommendedPackage"

	// social_ads
	FieldProductOrService  FieldID = "productOrService"
	FieldWebsite           FieldID = "website"
	FieldMonthlyBudget     FieldID = "monthlyBudget"
	FieldHasContent        FieldID = "hasContent"
	FieldContentLink       FieldID = "contentLink"
	FieldRecommendedFormat FieldID = "recommendedFormat"
	FieldRecommendedCta    FieldID = "recommendedCta"

	// social_content
	FieldBrandName             FieldID = "brandName"
	FieldBrandVoice            FieldID = "brandVoice"
	FieldContentPillars        FieldID = "contentPillars"
	FieldRecommendedFrequency  FieldID = "recommendedFrequency"
	FieldRecommendedContentMix FieldID = "recommendedContentMix"
)

// Storyline preference values for launch videos.
const (
	StorylineHaveIdeas   = "have_ideas"
	StorylineCreateForMe = "create_for_me"
)

// fieldSets lists the fields each data shape carries. Recommended fields are derived, never asked.
var fieldSets = map[ServiceType][]FieldID{
	ServiceLaunchVideo: {
		FieldProductName, FieldProductDescription, FieldTargetAudience, FieldPlatforms,
		FieldStorylinePreference, FieldStorylineNotes, FieldTone, FieldReferences,
		FieldDeadline, FieldRecommendedLength,
	},
	ServiceVideoEdit: {
		FieldVideoType, FieldFootageLink, FieldFootageMinutes, FieldPlatforms, FieldStyle,
		FieldMusic, FieldSubtitles, FieldTextOverlays, FieldNotes, FieldRecommendedLength,
		FieldRecommendedStyle,
	},
	ServicePitchDeck: {
		FieldCompanyName, FieldOneLiner, FieldCompanyStage, FieldPurpose, FieldHasExistingDeck,
		FieldExistingDeckLink, FieldKeyMetrics, FieldFundingAsk, FieldDeadline,
		FieldRecommendedSlideCount,
	},
	ServiceBrandPackage: {
		FieldBusinessName, FieldIndustry, FieldTargetAudience, FieldHasLogo, FieldLogoLink,
		FieldDeliverables, FieldBrandPersonality, FieldRecommendedPackage,
	},
	ServiceSocialAds: {
		FieldBusinessName, FieldProductOrService, FieldWebsite, FieldGoal, FieldTargetAudience,
		FieldMonthlyBudget, FieldPlatforms, FieldHasContent, FieldContentLink,
		FieldRecommendedFormat, FieldRecommendedCta,
	},
	ServiceSocialContent: {
		FieldBrandName, FieldIndustry, FieldGoal, FieldPlatforms, FieldBrandVoice,
		FieldContentPillars, FieldRecommendedFrequency, FieldRecommendedContentMix,
	},
}

// FieldsOf returns the field identifiers carried by the data shape of st.
func FieldsOf(st ServiceType) []FieldID {
	fields := fieldSets[st]
	out := make([]FieldID, len(fields))
	copy(out, fields)
	return out
}

// HasField reports whether the data shape of st carries field.
func HasField(st ServiceType, field FieldID) bool {
	for _, f := range fieldSets[st] {
		if f == field {
			return true
		}
	}
	return false
}
