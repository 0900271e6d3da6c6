package docs

var topics = []Topic{
	{
		Name:    "quickstart",
		Title:   "Quick Start",
		Summary: "Getting started with blocks",
		Content: topicQuickstart,
	},
	{
		Name:    "pipeline",
		Title:   "Pipeline Reference",
		Summary: "pipeline.yaml schema: steps, substeps, dependencies",
		Content: topicPipeline,
	},
	{
		Name:    "settings",
		Title:   "Settings Reference",
		Summary: "blocks.yaml fields and environment variables",
		Content: topicSettings,
	},
	{
		Name:    "lifecycle",
		Title:   "Substep Lifecycle",
		Summary: "Statuses, halting, retry, reset, defer and resume",
		Content: topicLifecycle,
	},
	{
		Name:    "variables",
		Title:   "Prompt Variables",
		Summary: "Variables available to prompts and the deploy command",
		Content: topicVariables,
	},
	{
		Name:    "api",
		Title:   "HTTP API",
		Summary: "Endpoints, authentication, and the progress stream",
		Content: topicAPI,
	},
	{
		Name:    "storage",
		Title:   "Storage Backends",
		Summary: "Where onboarding records and assets are kept",
		Content: topicStorage,
	},
}

const topicQuickstart = `Quick Start
===========

1. Initialize a project:

    blocks init

   This creates blocks.yaml (settings) and pipeline.yaml (the steps).

2. Export the collaborator keys you have:

    export OPENAI_API_KEY=...
    export REPLICATE_API_TOKEN=...
    export STRIPE_SECRET_KEY=...

3. Preview the plan without calling anything:

    blocks run alice --idea "invoice reminders" --dry-run

4. Run for real:

    blocks run alice --idea "invoice reminders" --audience "freelancers"

5. Check progress:

    blocks status alice

CLI Commands
------------

  blocks run <user>                   Run the remaining substeps
  blocks run <user> --idea TEXT       Start a new onboarding with an idea
  blocks run <user> --dry-run         Preview the plan
  blocks run <user> --retry SUBSTEP   Reset a failed substep and continue
  blocks run <user> --yes             Run deferrable steps without asking
  blocks status <user>                Show the onboarding timeline
  blocks defer <user> <step>          Skip a deferrable step for now
  blocks resume <user> <step>         Bring a deferred step back
  blocks doctor <user>                Ask the model to diagnose a failure
  blocks serve                        Start the HTTP API
  blocks token <user>                 Print an API token for a user
  blocks init                         Write blocks.yaml and pipeline.yaml
  blocks docs [topic]                 Show documentation
`

const topicPipeline = `Pipeline Reference
==================

The pipeline is defined in pipeline.yaml. When the file is missing the
built-in pipeline is used.

Top-level fields
----------------

  name             string    Required. Pipeline name.
  steps            list      Required. Ordered list of steps.

Step fields
-----------

  id               string    Required. Unique across steps and substeps.
  title            string    Display title.
  description      string    One-line description.
  required         bool      Required steps can never be deferred.
  deferrable       bool      The user may skip the step and come back.
  depends-on       list      Step ids that must be completed or deferred
                             before any substep of this step runs. Only
                             earlier steps may be named.
  substeps         list      Required. Ordered list of substeps.

Substep fields
--------------

  id               string    Required. Unique across the pipeline.
  title            string    Display title.
  description      string    One-line description.
  loading-text     string    Shown while the substep runs.
  handler          string    Collaborator to call. Defaults to the id.
  prompt           string    Overrides the built-in prompt; see 'variables'.
  timeout          int       Seconds. 0 means no limit.

Execution order is the order of the file: every substep of a step, then
the next step. Within a step, a substep runs only after the substeps
before it are completed.

Built-in handlers
-----------------

  logo             Replicate image model, stored in the asset bucket
  names            Language model names plus domain availability checks
  pricing_plan     Language model pricing tiers and theme
  deploy           Runs the configured deploy command
  copywriting      Language model landing copy, sanitized
  preview          Renders the landing page into the asset bucket
  stripe           Stripe Connect express account and onboarding link
  channels         Language model Instagram launch guide
`

const topicSettings = `Settings Reference
==================

Settings come from blocks.yaml, then a .env file (outside production),
then the environment. Later sources win.

  env / BLOCKS_ENV                     development or production
  log-level / LOG_LEVEL                debug, info, warn, error
  pipeline / BLOCKS_PIPELINE           Path to pipeline.yaml

  store.driver / BLOCKS_STORE          file, sqlite, redis, postgres
  store.dir / BLOCKS_STORE_DIR         Directory for the file driver
  store.dsn / DATABASE_URL             sqlite path or postgres URL
  store.addr / REDIS_ADDR              Redis address
  store.password / REDIS_PASSWORD      Redis password
  store.db / REDIS_DB                  Redis database number
  store.prefix / REDIS_PREFIX          Redis key prefix

  api.host / API_HOST                  Listen host
  api.port / API_PORT                  Listen port
  api.jwt-secret / JWT_SECRET          HS256 signing secret (required to serve)
  api.token-ttl / JWT_TTL              Token lifetime, e.g. 24h
  api.allow-origins / ALLOW_ORIGINS    Comma separated CORS origins

  llm.api-key / OPENAI_API_KEY         Chat model key
  llm.model / OPENAI_MODEL             Chat model name
  llm.base-url / OPENAI_BASE_URL       OpenAI compatible endpoint

  replicate.token / REPLICATE_API_TOKEN
  replicate.model / REPLICATE_LOGO_MODEL
  replicate.poll-interval              How often a prediction is polled

  domains.endpoint / DOMAIN_CHECK_URL  GET endpoint?domain=x -> {"available": bool}
  domains.api-key / DOMAIN_CHECK_API_KEY
  domains.tlds / DOMAIN_TLDS           Comma separated, tried in order

  deploy.command / BLOCKS_DEPLOY_COMMAND
  deploy.work-dir / BLOCKS_DEPLOY_DIR

  stripe.secret-key / STRIPE_SECRET_KEY
  stripe.refresh-url / STRIPE_REFRESH_URL
  stripe.return-url / STRIPE_RETURN_URL

  assets.bucket-url / ASSETS_BUCKET_URL     s3://, gs://, file:// or mem://
  assets.public-base-url / ASSETS_PUBLIC_URL
`

const topicLifecycle = `Substep Lifecycle
=================

Every substep is pending, loading, completed, or error.

  pending -> loading       the substep starts
  loading -> completed     the collaborator returned a result
  loading -> error         the collaborator failed
  error -> loading         retry
  completed -> loading     regenerate
  any -> pending           reset

Only one substep runs at a time. A step is completed once all of its
substeps are; completed steps stay completed even if a substep is later
regenerated or reset.

Halting
-------

A failed substep halts the onboarding: no other substep runs until the
failed one is retried successfully or reset. 'blocks run --retry' resets
the failed substep and continues. 'blocks doctor' explains the failure.

Interruptions
-------------

If the process dies while a substep is loading, the record keeps it in
loading and is marked interrupted. Reset that substep to continue.

Deferral
--------

Deferrable steps can be skipped with 'blocks defer' and brought back with
'blocks resume'. A deferred step satisfies the dependencies of later
steps. When every remaining step is deferred the onboarding is finished.

Saves
-----

Each record carries a version. A save made from an outdated copy is
rejected instead of overwriting newer progress; reload and try again.
`

const topicVariables = `Prompt Variables
================

Prompts in pipeline.yaml and the deploy command can use these variables
as $VAR or ${VAR}:

  $USER_ID        Onboarding user id
  $RUN_ID         Unique id of this onboarding
  $STEP_ID        Id of the running step
  $SUBSTEP_ID     Id of the running substep
  $IDEA           The business idea
  $AUDIENCE       The target audience
  $NAME           The chosen business name
  $SLUG           The name in lowercase-dash form
  $DOMAIN         The chosen domain
  $LOGO_URL       The stored logo
  $SITE_URL       The deployed site
  $PREVIEW_URL    The rendered preview

Prompts may use either spelling, $SLUG or $BLOCKS_SLUG. Unknown
variables fall back to the process environment.

The deploy command receives each variable in its environment as
BLOCKS_<NAME>. References such as $IDEA are rewritten to ${BLOCKS_IDEA}
and read by bash when the command runs, so values typed by users or
chosen by the model are never run as shell code. Quote them as you would
any shell variable: "$NAME".
`

const topicAPI = `HTTP API
========

Start the server with 'blocks serve'. Every onboarding route needs a
bearer token whose subject is the user id; 'blocks token <user>' prints
one. WebSocket clients may pass it as ?token= instead.

  GET  /health
  GET  /onboarding/:user                        Current view
  POST /onboarding/:user/start                  {"idea": "", "audience": ""}
  POST /onboarding/:user/run                    Run in the background (202)
  POST /onboarding/:user/substeps/:id/execute   Run one substep
  POST /onboarding/:user/substeps/:id/reset     Reset one substep
  POST /onboarding/:user/steps/:id/defer        Defer a step
  POST /onboarding/:user/steps/:id/resume       Resume a step
  GET  /onboarding/:user/ws                     Progress stream

Errors
------

  400  invalid body or user id
  401  missing or invalid token
  403  token for another user
  404  unknown step or substep
  409  dependency not met, halted, in flight, stale, already running
  422  transition not allowed, step not deferrable, missing idea
  502  the collaborator failed
  500  anything else

Stream
------

The first frame is {"type": "view", "data": <view>}. Each change after
that is {"type": "progress", "data": <change>}.
`

const topicStorage = `Storage Backends
================

Onboarding records are JSON documents keyed by user id.

  file       One file per user under store.dir. Default.
  sqlite     A single table in the database at store.dsn.
  redis      One key per user: <prefix>:onboarding:<user>.
  postgres   A JSONB table in the database at store.dsn.

Every backend rejects a save whose version does not match the stored one.

Assets
------

Logos and previews are written to the bucket at assets.bucket-url. The
returned URLs start with assets.public-base-url when it is set.
`
