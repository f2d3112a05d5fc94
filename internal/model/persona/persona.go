package persona

// ClientProfile captures the simulated client's background. Field names follow
// the ConsistentMI character data files so those files load unchanged.
type ClientProfile struct {
	ID               string    `json:"id" yaml:"id"`
	Name             string    `json:"name" yaml:"name"`
	AgentType        string    `json:"agent_type,omitempty" yaml:"agent_type"`
	Goal             string    `json:"topic" yaml:"topic"`
	Behavior         string    `json:"Behavior" yaml:"behavior"`
	Personas         []string  `json:"Personas" yaml:"personas"`
	Beliefs          []string  `json:"Beliefs" yaml:"beliefs"`
	AcceptablePlans  []string  `json:"Acceptable Plans" yaml:"acceptable_plans"`
	Motivation       []string  `json:"Motivation" yaml:"motivation"`
	InitialStage     string    `json:"initial_stage,omitempty" yaml:"initial_stage"`
	Suggestibilities []float64 `json:"suggestibilities,omitempty" yaml:"suggestibilities"`
}

// TherapistProfile describes the counselor side of a session.
type TherapistProfile struct {
	ID        string   `json:"id" yaml:"id"`
	Name      string   `json:"name" yaml:"name"`
	AgentType string   `json:"agent_type,omitempty" yaml:"agent_type"`
	Approach  string   `json:"approach" yaml:"approach"`
	Style     string   `json:"style" yaml:"style"`
	Rules     []string `json:"rules,omitempty" yaml:"rules"`
}

// Clone returns a copy whose slices can be consumed without touching the original.
func (p ClientProfile) Clone() ClientProfile {
	out := p
	out.Personas = append([]string(nil), p.Personas...)
	out.Beliefs = append([]string(nil), p.Beliefs...)
	out.AcceptablePlans = append([]string(nil), p.AcceptablePlans...)
	out.Motivation = append([]string(nil), p.Motivation...)
	out.Suggestibilities = append([]float64(nil), p.Suggestibilities...)
	return out
}

// Receptivity is the mean suggestibility, or 3 when none is recorded.
func (p ClientProfile) Receptivity() float64 {
	if len(p.Suggestibilities) == 0 {
		return 3
	}
	var sum float64
	for _, v := range p.Suggestibilities {
		sum += v
	}
	return sum / float64(len(p.Suggestibilities))
}

// MotivationText is the client's core motivation, the last Motivation entry.
func (p ClientProfile) MotivationText() string {
	if len(p.Motivation) == 0 {
		return ""
	}
	return p.Motivation[len(p.Motivation)-1]
}

// EngagedTopics are the topics leading to the motivation; the first one is
// the client's primary topic.
func (p ClientProfile) EngagedTopics() []string {
	if len(p.Motivation) < 2 {
		return nil
	}
	return append([]string(nil), p.Motivation[:len(p.Motivation)-1]...)
}

// Seed provides the built-in clients and therapists.
func Seed() ([]ClientProfile, []TherapistProfile) {
	clients := []ClientProfile{
		{
			ID:        "alex-smoking",
			Name:      "Alex",
			AgentType: "consistentmi",
			Goal:      "reducing smoking",
			Behavior:  "smoking",
			Personas: []string{
				"I am 34 and work night shifts at a distribution warehouse.",
				"I started smoking at 16 with friends from school.",
				"I smoke about a pack a day, more on long shifts.",
			},
			Beliefs: []string{
				"Smoking is the only thing that keeps me awake at work.",
				"My grandfather smoked all his life and lived to 90.",
				"Quitting would make me gain weight.",
			},
			AcceptablePlans: []string{
				"Replace the first cigarette of each shift with a short walk.",
				"Try nicotine gum during the drive home.",
			},
			Motivation: []string{
				"Parenting",
				"Child Development",
				"Role Model",
				"I do not want my daughter to start smoking because she sees me do it.",
			},
			InitialStage:     "Precontemplation",
			Suggestibilities: []float64{2, 3, 3},
		},
		{
			ID:        "jordan-drinking",
			Name:      "Jordan",
			AgentType: "consistentmi",
			Goal:      "reducing alcohol consumption",
			Behavior:  "drinking",
			Personas: []string{
				"I am 45 and manage a small accounting team.",
				"I usually drink four or five beers most evenings.",
			},
			Beliefs: []string{
				"Everyone in my industry drinks to unwind.",
				"I never miss work, so it is not a problem.",
			},
			AcceptablePlans: []string{
				"Keep two evenings a week alcohol free.",
			},
			Motivation: []string{
				"Health",
				"Diseases",
				"Hypertension",
				"My doctor warned me my blood pressure is getting dangerous.",
			},
			InitialStage:     "Precontemplation",
			Suggestibilities: []float64{4, 4, 5},
		},
	}

	therapists := []TherapistProfile{
		{
			ID:        "mi-counselor",
			Name:      "Dr. Rivera",
			AgentType: "therapist",
			Approach:  "motivational interviewing",
			Style:     "warm, reflective, asks open questions and avoids lecturing",
			Rules: []string{
				"Reflect before you ask.",
				"Keep each reply to one or two sentences.",
				"Say END when the session has reached a natural close.",
			},
		},
		{
			ID:        "cbt-counselor",
			Name:      "Dr. Chen",
			AgentType: "therapist",
			Approach:  "cognitive behavioral therapy",
			Style:     "structured, collaborative, uses Socratic questions",
			Rules: []string{
				"Identify the automatic thought behind what the client says.",
				"Suggest one small homework task near the end.",
			},
		},
	}

	return clients, therapists
}
