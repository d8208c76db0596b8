package metrics

const Namespace = "triage"
