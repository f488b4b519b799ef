package knowledge

// DefaultFAQ is the built-in FAQ set used to bootstrap an empty knowledge
// base. Ingested by `helpdesk ingest` and by POST /api/knowledge with an
// empty body.
func DefaultFAQ() []Entry {
	return []Entry{
		{
			Question: "What is Trackline?",
			Answer:   "Trackline is a project management tool inspired by Linear. It helps teams organize, track, and manage their projects and issues in a simple and efficient way.",
		},
		{
			Question: "How do I create an account?",
			Answer:   "You can create an account by clicking the 'Sign Up' button in the top navigation bar. You'll need to provide an email address and create a password.",
		},
		{
			Question: "Is it free to use?",
			Answer:   "Yes, Trackline is completely free to use as it's an open-source project. You can even download the source code and host it yourself.",
		},
		{
			Question: "Can I contribute to the project?",
			Answer:   "Absolutely! Trackline is open-source and contributions are welcome. Check out our GitHub repository to get started.",
		},
		{
			Question: "How do I report bugs or request features?",
			Answer:   "You can report bugs or request features by opening an issue on our GitHub repository. We appreciate your feedback and contributions!",
		},
		{
			Question: "What technologies does Trackline use?",
			Answer:   "Trackline is built in Go with a PostgreSQL database and uses pgvector for semantic FAQ search. The web frontend talks to a small JSON API.",
		},
	}
}
