package topic

// defaultEntries is the built-in topic table used by the ConsistentMI client.
// Edge weights are hand-authored; some edges only exist in one direction.
var defaultEntries = []Entry{
	{
		Source: "Health",
		Edges: []Edge{
			{Target: "Mental Disorders", Weight: 2},
			{Target: "Diseases", Weight: 2},
			{Target: "Sexual Health", Weight: 2},
			{Target: "Fitness", Weight: 2},
			{Target: "Health Care", Weight: 2},
			{Target: "Workplace Wellness", Weight: 1},
			{Target: "Interpersonal Relationships", Weight: 3},
			{Target: "Law", Weight: 3},
			{Target: "Economy", Weight: 3},
			{Target: "Education", Weight: 3},
		},
	},
	{
		Source: "Interpersonal Relationships",
		Edges: []Edge{
			{Target: "Parenting", Weight: 2},
			{Target: "Family", Weight: 2},
			{Target: "Health", Weight: 3},
			{Target: "Law", Weight: 3},
			{Target: "Economy", Weight: 3},
		},
	},
	{
		Source: "Parenting",
		Edges: []Edge{
			{Target: "Interpersonal Relationships", Weight: 2},
			{Target: "Family", Weight: 2},
			{Target: "Health", Weight: 3},
			{Target: "Education", Weight: 2},
			{Target: "Role Model", Weight: 1},
			{Target: "Child Development", Weight: 1},
			{Target: "Paternal Bond", Weight: 1},
			{Target: "Child Care", Weight: 1},
			{Target: "Habituation", Weight: 1},
		},
	},
	{
		Source: "Family",
		Edges: []Edge{
			{Target: "Interpersonal Relationships", Weight: 2},
			{Target: "Parenting", Weight: 2},
			{Target: "Law", Weight: 2},
			{Target: "Health", Weight: 3},
			{Target: "Family Estrangement", Weight: 1},
			{Target: "Family Disruption", Weight: 1},
			{Target: "Divorce", Weight: 1},
		},
	},
	{
		Source: "Mental Disorders",
		Edges: []Edge{
			{Target: "Health", Weight: 2},
			{Target: "Diseases", Weight: 3},
		},
	},
	{
		Source: "Diseases",
		Edges: []Edge{
			{Target: "Health", Weight: 2},
			{Target: "Mental Disorders", Weight: 3},
			{Target: "Infection", Weight: 1},
			{Target: "Hypertension", Weight: 1},
			{Target: "Flu", Weight: 1},
			{Target: "Inflammation", Weight: 1},
			{Target: "Liver Disease", Weight: 1},
			{Target: "Lung Cancer", Weight: 1},
			{Target: "COPD", Weight: 1},
			{Target: "Asthma", Weight: 1},
			{Target: "Stroke", Weight: 1},
			{Target: "Diabetes", Weight: 1},
		},
	},
	{
		Source: "Sexual Health",
		Edges: []Edge{
			{Target: "Health", Weight: 2},
			{Target: "Maternal Health", Weight: 1},
			{Target: "Safe Sex", Weight: 1},
			{Target: "Preterm Birth", Weight: 1},
			{Target: "Miscarriage", Weight: 1},
			{Target: "Birth Defects", Weight: 1},
		},
	},
	{
		Source: "Fitness",
		Edges: []Edge{
			{Target: "Health", Weight: 2},
			{Target: "Physical Activity", Weight: 1},
			{Target: "Sport", Weight: 1},
			{Target: "Physical Fitness", Weight: 1},
			{Target: "Strength", Weight: 1},
			{Target: "Flexibility", Weight: 1},
			{Target: "Endurance", Weight: 1},
		},
	},
	{
		Source: "Health Care",
		Edges: []Edge{
			{Target: "Health", Weight: 2},
			{Target: "Dentistry", Weight: 1},
			{Target: "Caregiver Burden", Weight: 1},
			{Target: "Independent Living", Weight: 1},
			{Target: "Human Appearance", Weight: 1},
		},
	},
	{
		Source: "Economy",
		Edges: []Edge{
			{Target: "Health", Weight: 3},
			{Target: "Interpersonal Relationships", Weight: 3},
			{Target: "Law", Weight: 2},
			{Target: "Education", Weight: 2},
			{Target: "Employment", Weight: 1},
			{Target: "Personal Finance", Weight: 1},
			{Target: "Cost of Living", Weight: 1},
		},
	},
	{
		Source: "Law",
		Edges: []Edge{
			{Target: "Health", Weight: 3},
			{Target: "Interpersonal Relationships", Weight: 3},
			{Target: "Economy", Weight: 2},
			{Target: "Education", Weight: 2},
			{Target: "Criminal Law", Weight: 1},
			{Target: "Family Law", Weight: 1},
			{Target: "Traffic Law", Weight: 1},
		},
	},
	{
		Source: "Education",
		Edges: []Edge{
			{Target: "Health", Weight: 3},
			{Target: "Interpersonal Relationships", Weight: 3},
			{Target: "Law", Weight: 2},
			{Target: "Economy", Weight: 2},
			{Target: "Student Affairs", Weight: 1},
			{Target: "Academic Achievement", Weight: 1},
		},
	},
	{
		Source: "Employment",
		Edges: []Edge{
			{Target: "Economy", Weight: 1},
			{Target: "Productivity", Weight: 1},
			{Target: "Absenteeism", Weight: 1},
			{Target: "Workplace Relationships", Weight: 1},
			{Target: "Career Break", Weight: 1},
			{Target: "Career Assessment", Weight: 1},
			{Target: "Absence Rate", Weight: 1},
			{Target: "Salary", Weight: 1},
			{Target: "Workplace Wellness", Weight: 2},
			{Target: "Workplace Incivility", Weight: 2},
		},
	},
	{
		Source: "Personal Finance",
		Edges: []Edge{
			{Target: "Economy", Weight: 1},
			{Target: "Cost of Living", Weight: 1},
			{Target: "Personal Budget", Weight: 1},
			{Target: "Debt", Weight: 1},
			{Target: "Income Deficit", Weight: 1},
		},
	},
	{
		Source: "Student Affairs",
		Edges: []Edge{
			{Target: "Education", Weight: 1},
			{Target: "Attendance", Weight: 1},
			{Target: "Suspension", Weight: 1},
			{Target: "Scholarship", Weight: 1},
		},
	},
	{
		Source: "Academic Achievement",
		Edges: []Edge{
			{Target: "Education", Weight: 1},
			{Target: "Exam", Weight: 1},
		},
	},
	{
		Source: "Criminal Law",
		Edges: []Edge{
			{Target: "Law", Weight: 1},
			{Target: "Arrest", Weight: 1},
			{Target: "Imprisonment", Weight: 1},
			{Target: "Complaint", Weight: 1},
		},
	},
	{
		Source: "Family Law",
		Edges: []Edge{
			{Target: "Law", Weight: 1},
			{Target: "Family", Weight: 1},
			{Target: "Child Custody", Weight: 1},
		},
	},
	{
		Source: "Traffic Law",
		Edges: []Edge{
			{Target: "Law", Weight: 1},
			{Target: "Traffic Ticket", Weight: 1},
		},
	},
	{
		Source: "Workplace Wellness",
		Edges: []Edge{
			{Target: "Health", Weight: 1},
			{Target: "Employment", Weight: 2},
		},
	},
	{
		Source: "Workplace Incivility",
		Edges: []Edge{
			{Target: "Employment", Weight: 2},
		},
	},
	{
		Source: "Productivity",
		Edges: []Edge{
			{Target: "Employment", Weight: 1},
		},
	},
	{
		Source: "Absenteeism",
		Edges: []Edge{
			{Target: "Employment", Weight: 1},
		},
	},
	{
		Source: "Workplace Relationships",
		Edges: []Edge{
			{Target: "Employment", Weight: 1},
		},
	},
	{
		Source: "Career Break",
		Edges: []Edge{
			{Target: "Employment", Weight: 1},
		},
	},
	{
		Source: "Career Assessment",
		Edges: []Edge{
			{Target: "Employment", Weight: 1},
		},
	},
	{
		Source: "Absence Rate",
		Edges: []Edge{
			{Target: "Employment", Weight: 1},
		},
	},
	{
		Source: "Salary",
		Edges: []Edge{
			{Target: "Employment", Weight: 1},
		},
	},
	{
		Source: "Cost of Living",
		Edges: []Edge{
			{Target: "Economy", Weight: 1},
			{Target: "Personal Finance", Weight: 1},
		},
	},
	{
		Source: "Personal Budget",
		Edges: []Edge{
			{Target: "Personal Finance", Weight: 1},
		},
	},
	{
		Source: "Debt",
		Edges: []Edge{
			{Target: "Personal Finance", Weight: 1},
		},
	},
	{
		Source: "Income Deficit",
		Edges: []Edge{
			{Target: "Personal Finance", Weight: 1},
		},
	},
	{
		Source: "Role Model",
		Edges: []Edge{
			{Target: "Parenting", Weight: 1},
		},
	},
	{
		Source: "Child Development",
		Edges: []Edge{
			{Target: "Parenting", Weight: 1},
		},
	},
	{
		Source: "Paternal Bond",
		Edges: []Edge{
			{Target: "Parenting", Weight: 1},
		},
	},
	{
		Source: "Child Care",
		Edges: []Edge{
			{Target: "Parenting", Weight: 1},
		},
	},
	{
		Source: "Habituation",
		Edges: []Edge{
			{Target: "Parenting", Weight: 1},
		},
	},
	{
		Source: "Family Estrangement",
		Edges: []Edge{
			{Target: "Family", Weight: 1},
		},
	},
	{
		Source: "Family Disruption",
		Edges: []Edge{
			{Target: "Family", Weight: 1},
		},
	},
	{
		Source: "Divorce",
		Edges: []Edge{
			{Target: "Family", Weight: 1},
		},
	},
	{
		Source: "Arrest",
		Edges: []Edge{
			{Target: "Criminal Law", Weight: 1},
		},
	},
	{
		Source: "Imprisonment",
		Edges: []Edge{
			{Target: "Criminal Law", Weight: 1},
		},
	},
	{
		Source: "Complaint",
		Edges: []Edge{
			{Target: "Criminal Law", Weight: 1},
		},
	},
	{
		Source: "Child Custody",
		Edges: []Edge{
			{Target: "Family Law", Weight: 1},
		},
	},
	{
		Source: "Traffic Ticket",
		Edges: []Edge{
			{Target: "Traffic Law", Weight: 1},
		},
	},
	{
		Source: "Attendance",
		Edges: []Edge{
			{Target: "Student Affairs", Weight: 1},
		},
	},
	{
		Source: "Suspension",
		Edges: []Edge{
			{Target: "Student Affairs", Weight: 1},
		},
	},
	{
		Source: "Scholarship",
		Edges: []Edge{
			{Target: "Student Affairs", Weight: 1},
		},
	},
	{
		Source: "Exam",
		Edges: []Edge{
			{Target: "Academic Achievement", Weight: 1},
		},
	},
	{
		Source: "Infection",
		Edges: []Edge{
			{Target: "Diseases", Weight: 1},
		},
	},
	{
		Source: "Hypertension",
		Edges: []Edge{
			{Target: "Diseases", Weight: 1},
		},
	},
	{
		Source: "Flu",
		Edges: []Edge{
			{Target: "Diseases", Weight: 1},
		},
	},
	{
		Source: "Inflammation",
		Edges: []Edge{
			{Target: "Diseases", Weight: 1},
		},
	},
	{
		Source: "Liver Disease",
		Edges: []Edge{
			{Target: "Diseases", Weight: 1},
		},
	},
	{
		Source: "Lung Cancer",
		Edges: []Edge{
			{Target: "Diseases", Weight: 1},
		},
	},
	{
		Source: "COPD",
		Edges: []Edge{
			{Target: "Diseases", Weight: 1},
		},
	},
	{
		Source: "Asthma",
		Edges: []Edge{
			{Target: "Diseases", Weight: 1},
		},
	},
	{
		Source: "Stroke",
		Edges: []Edge{
			{Target: "Diseases", Weight: 1},
		},
	},
	{
		Source: "Diabetes",
		Edges: []Edge{
			{Target: "Diseases", Weight: 1},
		},
	},
}

// DefaultGraph returns the built-in topic graph.
func DefaultGraph() *Graph {
	return NewGraph(defaultEntries)
}
