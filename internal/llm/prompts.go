// ABOUTME: Prompt templates for intent classification, date extraction, and grounded composition
// ABOUTME: Each template is formatted with the relevant fields at runtime
package llm

const classifyIntentSystemPrompt = `You are an intent classifier for a hospital virtual assistant.`

const classifyIntentPrompt = `Given the patient's latest message, classify the intent into one of the
following categories (respond with exactly one lowercase word, no punctuation):
- schedule
- cancel
- reschedule
- records
- triage
- homecare
- end
- clarify

Use "triage" when the patient describes symptoms and wants to know how serious
they are. Use "homecare" when the patient asks how to manage mild symptoms at
home. Use "end" for goodbyes or requests to finish the conversation. Use
"clarify" when the message does not fit any other category.

Use only the content of the patient's message. Do not assume anything else.

Patient message: %q
Intent:`

const extractDateTimeSystemPrompt = `Date/time extraction assistant with context.`

const extractDateTimePrompt = `You are an expert datetime parser. The current datetime is: %s
Read the input and extract exactly one date (ISO YYYY-MM-DD) and one time
(HH:MM, 24-hour) if present. If the input refers to relative dates (e.g.
"tomorrow", "next Friday"), resolve them against the provided current datetime.
If no date/time can be found, return null for that field.

Input: %q
Respond with JSON exactly in the form: {"date": <value or null>, "time": <value or null>}`

const composeSystemPrompt = `You are a hospital virtual assistant. You answer strictly from the
reference material you are given. If the reference material does not cover the
patient's situation, say so and suggest contacting hospital staff. Never invent
clinical claims that are absent from the reference material.`

const triageComposePrompt = `A patient reports the following:
Symptoms: %s
Duration: %s
Severity (self-reported): %s

Reference material from the hospital manual:
%s

Using ONLY the reference material and the reported symptoms, explain what the
manual says about this situation and what routine next step it recommends.
If the material does not cover these symptoms, say that and recommend
contacting the hospital. Be concise.`

const homeCareComposePrompt = `A patient asks for home-care guidance:
Symptoms: %s

Reference material from the hospital manual:
%s

Using ONLY the reference material, suggest home-care measures or
over-the-counter steps the manual supports for these symptoms. If the material
does not cover them, say that and recommend contacting the hospital. Be concise.`
