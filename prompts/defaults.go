package prompts

import "time"

// collectionVersion is the schema version written into prompt collections.
const collectionVersion = "1.0.0"

// DefaultPrompts returns the built-in prompt for each tool, keyed by tool ID.
// Reset restores a tool to the entry returned here.
func DefaultPrompts() map[string]ToolPrompt {
	now := time.Now().UTC().Format(time.RFC3339)

	prompts := map[string]ToolPrompt{
		"idea_forge": {
			ID:          "idea_forge",
			Name:        "Idea Forge - Business Idea Generator",
			Description: "Generates innovative business ideas with creativity controls",
			Template: `Generate 3 {creativity_descriptor} business ideas based on: {keywords}

{context_section}

For each idea, provide:
1. A catchy business name
2. Brief description (2-3 sentences)
3. Target market
4. Key value proposition
5. One potential challenge

Creativity level: {creativity}/10 ({creativity_descriptor})

Format your response as a numbered list with clear sections for each idea.`,
			Variables: []PromptVariable{
				{Name: "keywords", Description: "Industry keywords or focus areas", Example: "sustainability, healthcare, fintech", Required: true},
				{Name: "creativity", Description: "Creativity level (1-10)", Example: "7", Required: true},
				{Name: "creativity_descriptor", Description: "Creativity level description", Example: "moderately innovative", Required: true},
				{Name: "context_section", Description: "Additional context if provided", Example: "Additional context: Target B2B market", Required: false},
			},
			SystemMessage: "You are an expert business consultant helping entrepreneurs generate innovative business ideas. Provide practical, actionable suggestions.",
		},
		"global_compass": {
			ID:          "global_compass",
			Name:        "Global Compass - Market Analysis",
			Description: "Analyzes market entry opportunities across different regions",
			Template: `Provide a {detail_level} market entry analysis for: {product} in {region}

{budget_section}
{timeline_section}
{context_section}

Please analyze:
1. Market Opportunity & Size
2. Cultural Considerations & Business Practices
3. Regulatory & Legal Requirements
4. Competitive Landscape
5. Entry Strategy Recommendations
6. Risk Assessment
7. Success Factors & KPIs

Detail Level: {detail}/10 ({detail_level} analysis)

Please provide specific, actionable insights with concrete data points where possible. Focus on practical implementation steps and realistic market entry strategies.`,
			Variables: []PromptVariable{
				{Name: "product", Description: "Product or service to analyze", Example: "SaaS platform for small businesses", Required: true},
				{Name: "region", Description: "Target market region", Example: "Germany", Required: true},
				{Name: "detail", Description: "Analysis detail level (1-10)", Example: "7", Required: true},
				{Name: "detail_level", Description: "Detail level description", Example: "in-depth analysis", Required: true},
				{Name: "budget_section", Description: "Budget information if provided", Example: "Budget: $250k - $1M", Required: false},
				{Name: "timeline_section", Description: "Timeline information if provided", Example: "Timeline: 6-12 months", Required: false},
				{Name: "context_section", Description: "Additional context if provided", Example: "Additional context: Focus on enterprise customers", Required: false},
			},
			SystemMessage: "You are an expert international business consultant specializing in market entry strategies. Provide detailed, practical analysis with specific data points and actionable recommendations.",
		},
		"pitch_perfect": {
			ID:          "pitch_perfect",
			Name:        "Pitch Perfect - Presentation Coach",
			Description: "Provides AI coaching for pitch presentations with scoring and feedback",
			Template: `Analyze this {pitch_type} pitch for {audience}{duration_section}{industry_section} with {feedback_level} feedback:

"{pitch_content}"

Please provide a detailed analysis with:

1. **SCORES (1-10) for each category:**
   - Clarity & Structure: How well organized and easy to follow
   - Persuasiveness: How compelling and convincing the argument is
   - Audience Fit: How well tailored to the specific audience
   - Call to Action: How clear and actionable the ask is

2. **STRENGTHS:** What works well in the current pitch

3. **AREAS FOR IMPROVEMENT:** Specific issues that need attention

4. **CONCRETE SUGGESTIONS:** Actionable recommendations for enhancement

5. **REWRITE SUGGESTIONS:** Specific improvements for opening/closing

Feedback Style: {feedback_style}/10 ({feedback_level} analysis)

Provide specific, actionable advice that helps improve presentation effectiveness and audience engagement.`,
			Variables: []PromptVariable{
				{Name: "pitch_type", Description: "Type of pitch presentation", Example: "investor", Required: true},
				{Name: "audience", Description: "Target audience for the pitch", Example: "investors", Required: true},
				{Name: "pitch_content", Description: "The actual pitch content to analyze", Example: "Hi, I'm Sarah presenting EcoClean...", Required: true},
				{Name: "feedback_style", Description: "Feedback intensity level (1-10)", Example: "7", Required: true},
				{Name: "feedback_level", Description: "Feedback style description", Example: "detailed and thorough", Required: true},
				{Name: "duration_section", Description: "Duration information if provided", Example: " (5-10 minutes)", Required: false},
				{Name: "industry_section", Description: "Industry information if provided", Example: " in the fintech industry", Required: false},
			},
			SystemMessage: "You are an expert presentation coach specializing in business pitches. Provide specific, actionable feedback with clear scores and concrete suggestions for improvement.",
		},
		"prd_generator": {
			ID:          "prd_generator",
			Name:        "PRD Generator - Product Requirements",
			Description: "Creates comprehensive Product Requirements Documents through guided workflow",
			Template: `Create a comprehensive Product Requirements Document (PRD) for the following feature:

**Feature Name:** {feature_name}

**Initial Description:** {initial_idea}

**Detailed Requirements:**
{formatted_answers}

Please generate a well-structured PRD that includes:

1. **Executive Summary** - Brief overview and business rationale
2. **Problem Statement** - Clear definition of the problem being solved
3. **Goals & Success Metrics** - What we want to achieve and how we'll measure it
4. **User Stories & Use Cases** - Detailed user scenarios and workflows
5. **Functional Requirements** - Specific features and capabilities
6. **Non-Functional Requirements** - Performance, security, scalability considerations
7. **Technical Specifications** - Architecture, data models, and integration points
8. **Design Guidelines** - UI/UX requirements and design principles
9. **Implementation Plan** - Development phases and timeline considerations
10. **Risk Assessment** - Potential challenges and mitigation strategies
11. **Acceptance Criteria** - Definition of done and testing requirements

Format the PRD as a professional markdown document that would be suitable for a development team. Use clear headings, bullet points, and organize information logically. Include specific, actionable requirements that a junior developer could follow to implement the feature.

Make the PRD comprehensive but practical, focusing on clarity and implementability.`,
			Variables: []PromptVariable{
				{Name: "feature_name", Description: "Name of the feature being documented", Example: "User Profile Management", Required: true},
				{Name: "initial_idea", Description: "Initial feature description", Example: "A system for users to manage their profile information", Required: true},
				{Name: "formatted_answers", Description: "Formatted answers from clarifying questions", Example: "**Problem & Goal:** Users need to update their information easily", Required: true},
			},
			SystemMessage: "You are an expert product manager specializing in creating comprehensive Product Requirements Documents. Generate clear, actionable PRDs that development teams can follow to build features successfully.",
		},
	}

	for id, p := range prompts {
		p.IsCustom = false
		p.CreatedAt = now
		p.UpdatedAt = now
		prompts[id] = p
	}
	return prompts
}
