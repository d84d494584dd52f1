package game

// Scenario captures the training situation exposed to the frontend and the
// role-play instructions handed to the character agent.
type Scenario struct {
	ID                 string `json:"id"`
	Title              string `json:"title"`
	Icon               string `json:"icon"`
	Description        string `json:"description"`
	Difficulty         string `json:"difficulty"`
	NPCRole            string `json:"npcRole"`
	Goal               string `json:"goal"`
	InitialLine        string `json:"initialLine"`
	CoverColor         string `json:"coverColor"`
	Context            string `json:"context"`            // 角色代理的具体扮演指令
	EvaluationCriteria string `json:"evaluationCriteria"` // 评估代理的额外评分要点
}

// ScenarioStore exposes scenario retrieval for HTTP handlers.
type ScenarioStore interface {
	List() []Scenario
	FindByID(id string) (Scenario, bool)
}

// MemoryScenarioStore implements ScenarioStore with an in-memory slice.
type MemoryScenarioStore struct {
	items []Scenario
}

// NewMemoryScenarioStore returns a store preloaded with the supplied scenarios.
func NewMemoryScenarioStore(items []Scenario) *MemoryScenarioStore {
	return &MemoryScenarioStore{items: append([]Scenario(nil), items...)}
}

// List returns the predefined scenario list.
func (s *MemoryScenarioStore) List() []Scenario {
	return append([]Scenario(nil), s.items...)
}

// FindByID looks up a scenario by identifier.
func (s *MemoryScenarioStore) FindByID(id string) (Scenario, bool) {
	for _, item := range s.items {
		if item.ID == id {
			return item, true
		}
	}
	return Scenario{}, false
}

// Seed provides the default scenario catalog required by the product spec.
func Seed() []Scenario {
	return []Scenario{
		{
			ID:          "party-orphan",
			Title:       `The Party "Orphan"`,
			Icon:        "🥂",
			Description: "You are alone at a party. Approach another solo person holding a drink.",
			Difficulty:  "Easy",
			NPCRole:     "Alex (The Relieved Loner)",
			Goal:        "Break the ice using the environment, make them feel comfortable.",
			InitialLine: "*Glances up from phone, looking slightly relieved someone walked over*",
			CoverColor:  "bg-indigo-500",
			Context: `Role: Alex. You are shy, standing alone at a party. You are relieved someone approached you but don't know what to say.
Setting: A house party, kitchen area.
Triggers: Respond well to observations about the food/drink/host. Respond poorly to "What do you do?" immediately.`,
			EvaluationCriteria: "Did the user use the setting to open? Did they make the NPC feel comfortable?",
		},
		{
			ID:          "old-friend",
			Title:       "Old Friend Encounter",
			Icon:        "😲",
			Description: "You run into an old friend you haven't seen in years. Random encounter.",
			Difficulty:  "Easy",
			NPCRole:     "Sam (The Rushed Friend)",
			Goal:        "Reconnect quickly, exchange contact info, don't be awkward.",
			InitialLine: "Oh my god! Wow! It's been forever!",
			CoverColor:  "bg-teal-500",
			Context: `Role: Sam. You are rushing to an appointment but happy to see the user. You might have forgotten their name.
Setting: A busy street corner.
Triggers: If user re-introduces themselves naturally, appreciate it. If they ask "Do you remember me?", get awkward.`,
			EvaluationCriteria: "Did the user offer their name to help the NPC? Did they respect the time constraint?",
		},
		{
			ID:          "uber-ride",
			Title:       "The Chatty Uber Ride",
			Icon:        "🚗",
			Description: "Your driver wants to chat. You are in an enclosed space for 15 minutes.",
			Difficulty:  "Medium",
			NPCRole:     "Raj (The Chatty Driver)",
			Goal:        "Engage politely without letting them monopolize the entire ride.",
			InitialLine: "So, crazy traffic today, huh? You heading home or going out to have some fun?",
			CoverColor:  "bg-orange-500",
			Context: `Role: Raj. You are bored and love to talk. You tend to be a "Monopolizer" if let loose.
Setting: Backseat of a car.
Triggers: If user gives one word answers, keep prying. If user asks open ended questions, talk A LOT about your podcast idea.`,
			EvaluationCriteria: "Did the user manage the flow? Did they handle the monopolizer?",
		},
		{
			ID:          "gym-regular",
			Title:       "The Gym Regular",
			Icon:        "💪",
			Description: "You see them daily but only nod. Now initiating real conversation.",
			Difficulty:  "Medium",
			NPCRole:     "Jordan (The Focused Lifter)",
			Goal:        `Move from "nodding terms" to "speaking terms" without ruining their set.`,
			InitialLine: "*Wipes sweat from forehead, breathing heavily* Hey man. You done with the squat rack?",
			CoverColor:  "bg-rose-500",
			Context: `Role: Jordan. Mid-workout. You are polite but focused.
Setting: Gym weight room.
Triggers: Hates long conversations during rest periods. Responds well to compliments on form or shared struggle.`,
			EvaluationCriteria: "Timing is key. Did the user keep it brief but impactful?",
		},
		{
			ID:          "pre-meeting",
			Title:       "Pre-Meeting Void",
			Icon:        "🏢",
			Description: "Arrived early. Alone with an unfamiliar colleague for 5 minutes.",
			Difficulty:  "Hard",
			NPCRole:     "Taylor (The Professional)",
			Goal:        "Fill the dead air professionally. Build rapport before the boss arrives.",
			InitialLine: "*Looks up from laptop with a tight-lipped polite smile* Hey.",
			CoverColor:  "bg-slate-500",
			Context: `Role: Taylor from Marketing. You are checking emails. You don't know the user well.
Setting: Sterile conference room. Silence is loud.
Triggers: If user asks about work immediately, give standard answers. If user asks about the weekend/weather/commute, warm up slightly.`,
			EvaluationCriteria: "Did the user break the silence confidently? Did they avoid 'The FBI Agent' interrogation?",
		},
		{
			ID:          "elevator-ceo",
			Title:       "Elevator with CEO",
			Icon:        "🛗",
			Description: "30-second high-stakes encounter with the company VIP.",
			Difficulty:  "Hard",
			NPCRole:     "Ms. Robinson (The CEO)",
			Goal:        "Make a positive impression. Don't pitch. Don't be weird.",
			InitialLine: "*Nods briefly while checking watch* Good morning.",
			CoverColor:  "bg-emerald-600",
			Context: `Role: The CEO. Busy, tired, thinking about numbers. Hates sycophants.
Setting: Elevator. 20 floors to go.
Triggers: Responds well to genuine, low-stakes observation or confidence. Shuts down if pitched to.`,
			EvaluationCriteria: "Brevity and confidence. Did they exit gracefully when the doors opened?",
		},
	}
}
